package social

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verity/backend/internal/dto"
	"github.com/verity/backend/internal/models"
)

func comment(id string, parent string, offset int) models.Comment {
	c := models.Comment{
		ID:        id,
		PostID:    "post-1",
		UserID:    "user-1",
		Content:   "comment " + id,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, offset, 0, time.UTC),
	}
	if parent != "" {
		c.ParentID = &parent
	}
	return c
}

// shape flattens a forest into "id(children...)" strings for comparison
func shape(nodes []*dto.CommentNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		s := n.ID
		if len(n.Replies) > 0 {
			s += "("
			for i, child := range shape(n.Replies) {
				if i > 0 {
					s += " "
				}
				s += child
			}
			s += ")"
		}
		out = append(out, s)
	}
	return out
}

func TestBuildCommentTree(t *testing.T) {
	tests := []struct {
		name     string
		comments []models.Comment
		expected []string
	}{
		{
			name:     "empty input",
			comments: nil,
			expected: []string{},
		},
		{
			name: "roots only keep input order",
			comments: []models.Comment{
				comment("a", "", 1),
				comment("b", "", 2),
				comment("c", "", 3),
			},
			expected: []string{"a", "b", "c"},
		},
		{
			name: "replies nest under their parent in input order",
			comments: []models.Comment{
				comment("a", "", 1),
				comment("b", "", 2),
				comment("a1", "a", 3),
				comment("b1", "b", 4),
				comment("a2", "a", 5),
				comment("a1x", "a1", 6),
			},
			expected: []string{"a(a1(a1x) a2)", "b(b1)"},
		},
		{
			name: "missing parent demotes to root",
			comments: []models.Comment{
				comment("a", "", 1),
				comment("orphan", "deleted", 2),
				comment("a1", "a", 3),
			},
			expected: []string{"a(a1)", "orphan"},
		},
		{
			name: "self reference becomes a root",
			comments: []models.Comment{
				comment("loop", "loop", 1),
			},
			expected: []string{"loop"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forest := BuildCommentTree(tt.comments)
			require.NotNil(t, forest)
			assert.Equal(t, tt.expected, shape(forest))
		})
	}
}

func TestBuildCommentTreeIsDeterministic(t *testing.T) {
	comments := []models.Comment{
		comment("a", "", 1),
		comment("a1", "a", 2),
		comment("b", "", 3),
		comment("a2", "a", 4),
		comment("x", "gone", 5),
		comment("a1a", "a1", 6),
	}

	first := BuildCommentTree(comments)
	second := BuildCommentTree(comments)
	assert.Equal(t, shape(first), shape(second))
	assert.Equal(t, []string{"a(a1(a1a) a2)", "b", "x"}, shape(first))
}

func TestBuildCommentTreeKeepsEveryComment(t *testing.T) {
	comments := []models.Comment{
		comment("a", "", 1),
		comment("b", "a", 2),
		comment("c", "missing", 3),
		comment("d", "c", 4),
	}

	var count func(nodes []*dto.CommentNode) int
	count = func(nodes []*dto.CommentNode) int {
		n := len(nodes)
		for _, node := range nodes {
			n += count(node.Replies)
		}
		return n
	}

	forest := BuildCommentTree(comments)
	assert.Equal(t, len(comments), count(forest))
	for _, root := range forest {
		assert.NotNil(t, root.Replies)
	}
}
