package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(winrateCmd)
	rootCmd.AddCommand(eloCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List all tracked players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/players")
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List all 4v4 matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/matches")
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the elo leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/players/by-elo")
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile [player name]",
	Short: "Show a player's combined profile (player, matches, elo history)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/players/combined/" + url.PathEscape(args[0]))
	},
}

var winrateCmd = &cobra.Command{
	Use:   "winrate [player one] [player two]",
	Short: "Show the same-team win rate of two players",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/matches/same-team-winrate/" + url.PathEscape(args[0]) + "/" + url.PathEscape(args[1]))
	},
}

var eloCmd = &cobra.Command{
	Use:   "elo [player name]",
	Short: "Show a player's elo history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/player_elo/" + url.PathEscape(args[0]))
	},
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List pending ingest jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/jobs")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
