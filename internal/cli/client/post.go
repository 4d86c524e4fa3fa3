package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// PostResponse mirrors the daemon's post representation.
type PostResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	Author      string  `json:"author"`
	Published   bool    `json:"published"`
	PublishedAt *string `json:"published_at"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// ListPostsResponse mirrors the daemon's post list response.
type ListPostsResponse struct {
	Posts      []*PostResponse `json:"posts"`
	NextCursor string          `json:"next_cursor,omitempty"`
	HasMore    bool            `json:"has_more"`
}

// PostCmd creates the post command group.
func PostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Manage blog posts",
	}

	cmd.AddCommand(postCreateCmd())
	cmd.AddCommand(postListCmd())
	cmd.AddCommand(postGetCmd())
	cmd.AddCommand(postUpdateCmd())
	cmd.AddCommand(postDeleteCmd())
	cmd.AddCommand(postPublishCmd())
	cmd.AddCommand(postUnpublishCmd())

	return cmd
}

func postCreateCmd() *cobra.Command {
	var title, content, author string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new post",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Post("/posts", map[string]string{
				"title":   title,
				"content": content,
				"author":  author,
			})
			if err != nil {
				return fmt.Errorf("create failed: %w", err)
			}

			return printPost(cmd, resp.Data)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Post title")
	cmd.Flags().StringVar(&content, "content", "", "Post content")
	cmd.Flags().StringVar(&author, "author", "", "Post author")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")
	_ = cmd.MarkFlagRequired("author")

	return cmd
}

func postListCmd() *cobra.Command {
	var limit int
	var cursor string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			path := fmt.Sprintf("/posts?limit=%d", limit)
			if cursor != "" {
				path += "&cursor=" + cursor
			}
			resp, err := api.Get(path)
			if err != nil {
				return fmt.Errorf("list failed: %w", err)
			}

			var listResp ListPostsResponse
			if err := json.Unmarshal(resp.Data, &listResp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				output, _ := json.MarshalIndent(listResp, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			if len(listResp.Posts) == 0 {
				fmt.Println("No posts found.")
				return nil
			}

			for i, post := range listResp.Posts {
				status := "draft"
				if post.Published {
					status = "published"
				}
				fmt.Printf("%d. %s [%s]\n", i+1, post.Title, status)
				fmt.Printf("   Author: %s\n", post.Author)
				fmt.Printf("   ID: %s\n", post.ID)
				if i < len(listResp.Posts)-1 {
					fmt.Println(strings.Repeat("-", 40))
				}
			}

			if listResp.HasMore && listResp.NextCursor != "" {
				fmt.Printf("\nMore results available. Use --cursor %s\n", listResp.NextCursor)
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func postGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Get("/posts/" + args[0])
			if err != nil {
				return fmt.Errorf("get failed: %w", err)
			}

			return printPost(cmd, resp.Data)
		},
	}
	return cmd
}

func postUpdateCmd() *cobra.Command {
	var title, content, author string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Put("/posts/"+args[0], map[string]string{
				"title":   title,
				"content": content,
				"author":  author,
			})
			if err != nil {
				return fmt.Errorf("update failed: %w", err)
			}

			return printPost(cmd, resp.Data)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Post title")
	cmd.Flags().StringVar(&content, "content", "", "Post content")
	cmd.Flags().StringVar(&author, "author", "", "Post author")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")
	_ = cmd.MarkFlagRequired("author")

	return cmd
}

func postDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			if _, err := api.Delete("/posts/" + args[0]); err != nil {
				return fmt.Errorf("delete failed: %w", err)
			}

			fmt.Printf("Deleted post %s\n", args[0])
			return nil
		},
	}
	return cmd
}

func postPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish <id>",
		Short: "Publish a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Post("/posts/"+args[0]+"/publish", nil)
			if err != nil {
				return fmt.Errorf("publish failed: %w", err)
			}

			return printPost(cmd, resp.Data)
		},
	}
	return cmd
}

func postUnpublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unpublish <id>",
		Short: "Revert a post to draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Post("/posts/"+args[0]+"/unpublish", nil)
			if err != nil {
				return fmt.Errorf("unpublish failed: %w", err)
			}

			return printPost(cmd, resp.Data)
		},
	}
	return cmd
}

func printPost(cmd *cobra.Command, data json.RawMessage) error {
	var post PostResponse
	if err := json.Unmarshal(data, &post); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	outputJSON, _ := cmd.Flags().GetBool("output")
	if outputJSON {
		output, _ := json.MarshalIndent(post, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	status := "draft"
	if post.Published {
		status = "published"
		if post.PublishedAt != nil {
			status += " at " + *post.PublishedAt
		}
	}

	fmt.Printf("%s [%s]\n", post.Title, status)
	fmt.Printf("Author: %s\n", post.Author)
	fmt.Printf("ID: %s\n", post.ID)
	fmt.Printf("Created: %s\n", post.CreatedAt)
	fmt.Printf("Updated: %s\n\n", post.UpdatedAt)
	fmt.Println(post.Content)
	return nil
}
