package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	page  int = 1
	limit int = 10

	postVisibility string
	postMedia      string
	replyTo        string
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show your home feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, body, err := callAPI(http.MethodGet, "/feed", pageQuery(), nil)
		if err != nil {
			return err
		}
		printResult(body, func() { printPosts(result) })
		return nil
	},
}

var followCmd = &cobra.Command{
	Use:   "follow <username>",
	Short: "Follow a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFollow(args[0], http.MethodPut)
	},
}

var unfollowCmd = &cobra.Command{
	Use:   "unfollow <username>",
	Short: "Stop following a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFollow(args[0], http.MethodDelete)
	},
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Publish, read and engage with posts",
}

var createPostCmd = &cobra.Command{
	Use:   "create <content>",
	Short: "Publish a post, optionally with an image or video",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, body, err := uploadPost(strings.Join(args, " "), postVisibility, postMedia)
		if err != nil {
			return err
		}
		printResult(body, func() {
			fmt.Printf("✓ Published post %s\n", str(result, "postId"))
		})
		return nil
	},
}

var showPostCmd = &cobra.Command{
	Use:   "show <post-id>",
	Short: "Show a single post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, body, err := callAPI(http.MethodGet, "/posts/get-single", url.Values{"postId": {args[0]}}, nil)
		if err != nil {
			return err
		}
		printResult(body, func() {
			if post, ok := result["post"].(map[string]interface{}); ok {
				printPost(post)
			}
		})
		return nil
	},
}

var userPostsCmd = &cobra.Command{
	Use:   "posts <username>",
	Short: "List a user's posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := pageQuery()
		query.Set("username", args[0])
		result, body, err := callAPI(http.MethodGet, "/posts/all-posts", query, nil)
		if err != nil {
			return err
		}
		printResult(body, func() { printPosts(result) })
		return nil
	},
}

var deletePostCmd = &cobra.Command{
	Use:   "delete <post-id>",
	Short: "Delete one of your posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, body, err := callAPI(http.MethodDelete, "/posts/delete", url.Values{"postId": {args[0]}}, nil)
		if err != nil {
			return err
		}
		printResult(body, func() { fmt.Println("✓ Post deleted") })
		return nil
	},
}

var likeCmd = &cobra.Command{
	Use:   "like <post-id>",
	Short: "Like a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setLike(args[0], http.MethodPut)
	},
}

var unlikeCmd = &cobra.Command{
	Use:   "unlike <post-id>",
	Short: "Remove your like from a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setLike(args[0], http.MethodDelete)
	},
}

var commentsCmd = &cobra.Command{
	Use:   "comments <post-id>",
	Short: "Show the comment threads on a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, body, err := callAPI(http.MethodGet, "/posts/comments", url.Values{"postId": {args[0]}}, nil)
		if err != nil {
			return err
		}
		printResult(body, func() {
			comments := list(result, "comments")
			if len(comments) == 0 {
				fmt.Println("No comments")
				return
			}
			for _, c := range comments {
				printComment(c, 0)
			}
		})
		return nil
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment <post-id> <content>",
	Short: "Comment on a post, or reply with --reply-to",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]interface{}{
			"postId":  args[0],
			"content": strings.Join(args[1:], " "),
		}
		if replyTo != "" {
			payload["parentComment"] = replyTo
		}
		result, body, err := callAPI(http.MethodPost, "/posts/comments/create", nil, payload)
		if err != nil {
			return err
		}
		printResult(body, func() {
			fmt.Printf("✓ Comment %s added\n", str(result, "commentId"))
		})
		return nil
	},
}

var uncommentCmd = &cobra.Command{
	Use:   "uncomment <comment-id>",
	Short: "Delete one of your comments and its replies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, body, err := callAPI(http.MethodDelete, "/posts/comments/delete", url.Values{"commentId": {args[0]}}, nil)
		if err != nil {
			return err
		}
		printResult(body, func() {
			fmt.Printf("✓ Removed %d comment(s)\n", num(result, "deleted"))
		})
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{feedCmd, userPostsCmd, followersCmd, followingCmd} {
		cmd.Flags().IntVar(&page, "page", page, "Page number")
		cmd.Flags().IntVar(&limit, "limit", limit, "Items per page")
	}

	createPostCmd.Flags().StringVar(&postVisibility, "visibility", "", "public, followers or private (default public)")
	createPostCmd.Flags().StringVar(&postMedia, "media", "", "Path to an image or video to attach")
	commentCmd.Flags().StringVar(&replyTo, "reply-to", "", "Comment ID to reply to")

	postCmd.AddCommand(createPostCmd)
	postCmd.AddCommand(showPostCmd)
	postCmd.AddCommand(userPostsCmd)
	postCmd.AddCommand(deletePostCmd)
	postCmd.AddCommand(likeCmd)
	postCmd.AddCommand(unlikeCmd)
	postCmd.AddCommand(commentsCmd)
	postCmd.AddCommand(commentCmd)
	postCmd.AddCommand(uncommentCmd)
}

func pageQuery() url.Values {
	return url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
}

func setFollow(username, method string) error {
	result, body, err := callAPI(method, "/follow/"+url.PathEscape(username), nil, nil)
	if err != nil {
		return err
	}
	printResult(body, func() {
		if following, _ := result["following"].(bool); following {
			fmt.Printf("✓ Following @%s\n", username)
		} else {
			fmt.Printf("✓ Not following @%s\n", username)
		}
	})
	return nil
}

func setLike(postID, method string) error {
	result, body, err := callAPI(method, "/posts/like/"+url.PathEscape(postID), nil, nil)
	if err != nil {
		return err
	}
	printResult(body, func() {
		if liked, _ := result["liked"].(bool); liked {
			fmt.Println("♥ Liked")
		} else {
			fmt.Println("♡ Not liked")
		}
	})
	return nil
}

func printPosts(result map[string]interface{}) {
	posts := list(result, "posts")
	if len(posts) == 0 {
		fmt.Println("No posts")
		return
	}
	for _, p := range posts {
		printPost(p)
	}
	if more, _ := result["hasMore"].(bool); more {
		fmt.Printf("... more on page %d\n", num(result, "page")+1)
	}
}

func printPost(post map[string]interface{}) {
	author, _ := post["author"].(map[string]interface{})
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Printf("@%s · %s · %s\n", str(author, "username"), str(post, "visibility"), str(post, "createdAt"))
	fmt.Println(str(post, "content"))
	if media, ok := post["media"].(map[string]interface{}); ok {
		fmt.Printf("[%s] %s\n", str(media, "type"), str(media, "url"))
	}
	fmt.Printf("♥ %d  💬 %d  id %s\n", num(post, "likesCount"), num(post, "commentsCount"), str(post, "id"))
}

func printComment(comment map[string]interface{}, depth int) {
	author, _ := comment["author"].(map[string]interface{})
	indent := strings.Repeat("  ", depth)
	fmt.Printf("%s@%s: %s (%s)\n", indent, str(author, "username"), str(comment, "content"), str(comment, "id"))
	for _, reply := range list(comment, "replies") {
		printComment(reply, depth+1)
	}
}
