package social

import (
	"github.com/verity/backend/internal/dto"
	"github.com/verity/backend/internal/models"
)

// BuildCommentTree turns comments sorted by creation time into a forest.
// The first pass indexes a node per comment; the second attaches each node to
// its parent or, when the parent is not in the set, to the root list. Children
// keep input order and no comment is dropped.
func BuildCommentTree(comments []models.Comment) []*dto.CommentNode {
	nodes := make(map[string]*dto.CommentNode, len(comments))
	for i := range comments {
		nodes[comments[i].ID] = dto.NewCommentNode(&comments[i])
	}

	roots := make([]*dto.CommentNode, 0, len(comments))
	for i := range comments {
		node := nodes[comments[i].ID]
		if parentID := comments[i].ParentID; parentID != nil {
			if parent, ok := nodes[*parentID]; ok && parent != node {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
