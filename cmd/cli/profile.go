package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in and check usernames",
}

var signinCmd = &cobra.Command{
	Use:   "signin <email-or-username> <password>",
	Short: "Sign in and print a session token",
	Long: `Sign in with an email or username. The token is printed on its own line so it
can be exported directly:

  export VERITY_TOKEN=$(verity auth signin alice password123)`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, body, err := callAPI(http.MethodPost, "/signin", nil, map[string]string{
			"identifier": args[0],
			"password":   args[1],
		})
		if err != nil {
			return err
		}
		printResult(body, func() {
			fmt.Println(str(result, "token"))
		})
		return nil
	},
}

var checkUsernameCmd = &cobra.Command{
	Use:   "check-username <username>",
	Short: "Check whether a username can be registered",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, body, err := callAPI(http.MethodGet, "/check-username", url.Values{"username": {args[0]}}, nil)
		if err != nil {
			return err
		}
		printResult(body, func() {
			if available, _ := result["available"].(bool); available {
				fmt.Printf("✓ %s is available\n", args[0])
			} else {
				fmt.Printf("✗ %s is taken\n", args[0])
			}
		})
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Look at profiles and social connections",
}

var getProfileCmd = &cobra.Command{
	Use:   "get <username>",
	Short: "Show a user's public profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getProfile(args[0])
	},
}

var followersCmd = &cobra.Command{
	Use:   "followers <username>",
	Short: "List who follows a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listConnections(args[0], "followers")
	},
}

var followingCmd = &cobra.Command{
	Use:   "following <username>",
	Short: "List who a user follows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listConnections(args[0], "following")
	},
}

func init() {
	authCmd.AddCommand(signinCmd)
	authCmd.AddCommand(checkUsernameCmd)

	profileCmd.AddCommand(getProfileCmd)
	profileCmd.AddCommand(followersCmd)
	profileCmd.AddCommand(followingCmd)
}

func getProfile(username string) error {
	result, body, err := callAPI(http.MethodGet, "/profile", url.Values{"username": {username}}, nil)
	if err != nil {
		return err
	}

	printResult(body, func() {
		profile, _ := result["user"].(map[string]interface{})

		fmt.Printf("\n📋 Profile Information\n")
		fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
		fmt.Printf("Username: %s\n", str(profile, "username"))
		fmt.Printf("Name: %s\n", str(profile, "fullName"))
		if bio := str(profile, "bio"); bio != "" {
			fmt.Printf("Bio: %s\n", bio)
		}
		fmt.Printf("Followers: %d  Following: %d  Posts: %d\n",
			num(profile, "followersCount"), num(profile, "followingCount"), num(profile, "postsCount"))

		// The follow status only makes sense with a session
		if authToken != "" {
			status, _, err := callAPI(http.MethodGet, "/follow/status", url.Values{"username": {username}}, nil)
			if err == nil {
				if following, _ := status["following"].(bool); following {
					fmt.Printf("You follow @%s\n", username)
				}
			}
		}
		fmt.Printf("\n")
	})
	return nil
}

func listConnections(username, kind string) error {
	result, body, err := callAPI(http.MethodGet, "/users/"+url.PathEscape(username)+"/"+kind, pageQuery(), nil)
	if err != nil {
		return err
	}

	printResult(body, func() {
		users := list(result, "users")
		if len(users) == 0 {
			fmt.Println("No users")
			return
		}
		for _, u := range users {
			fmt.Printf("@%-20s %s\n", str(u, "username"), str(u, "fullName"))
		}
		if more, _ := result["hasMore"].(bool); more {
			fmt.Printf("... more on page %d\n", num(result, "page")+1)
		}
	})
	return nil
}
