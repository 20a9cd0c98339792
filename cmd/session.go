package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkarlsen/uipilot/internal/output"
	"github.com/mkarlsen/uipilot/internal/script"
	"github.com/mkarlsen/uipilot/internal/store"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored automation sessions",
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create <script.json>",
	Short: "Store a script as a versioned session",
	Long: `Validate a script and store it with its declared input variables.

Examples:
  uipilot session create login.json --name login --description "portal login"
  uipilot session create login.json --name login --session-version 2 \
      --variable user:Username:required --variable card:Card:required:approval`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionCreate,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openSessionStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		sessions, err := st.ListSessions()
		if err != nil {
			return err
		}
		return output.Print(sessions)
	},
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a session version and its run history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openSessionStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		ver, _ := cmd.Flags().GetInt("session-version")
		return st.DeleteSession(args[0], ver)
	},
}

var sessionRunsCmd = &cobra.Command{
	Use:   "runs <name>",
	Short: "Show a session's run history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openSessionStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		ver, _ := cmd.Flags().GetInt("session-version")
		runs, err := st.ListRuns(args[0], ver)
		if err != nil {
			return err
		}
		return output.Print(runs)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.PersistentFlags().String("db", "", "Session database path (overrides config)")
	sessionCmd.PersistentFlags().Int("session-version", 1, "Session version")

	sessionCreateCmd.Flags().String("name", "", "Session name (required)")
	sessionCreateCmd.Flags().String("description", "", "Session description")
	sessionCreateCmd.Flags().StringArray("variable", nil,
		"Declare an input as name:label[:required][:approval] (repeatable)")
	_ = sessionCreateCmd.MarkFlagRequired("name")

	sessionCmd.AddCommand(sessionCreateCmd, sessionListCmd, sessionDeleteCmd, sessionRunsCmd)
}

func openSessionStore(cmd *cobra.Command) (*store.Store, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = appCfg.Store.Path
	}
	return store.Open(path)
}

func runSessionCreate(cmd *cobra.Command, args []string) error {
	doc, err := script.ParseFile(args[0])
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	description, _ := cmd.Flags().GetString("description")
	ver, _ := cmd.Flags().GetInt("session-version")

	sess := store.Session{Name: name, Description: description, Version: ver}
	for i, action := range doc.Actions {
		raw, err := json.Marshal(action)
		if err != nil {
			return fmt.Errorf("encode action %d: %w", i, err)
		}
		sess.Steps = append(sess.Steps, store.Step{Number: i + 1, Action: raw})
	}

	decls, _ := cmd.Flags().GetStringArray("variable")
	for _, decl := range decls {
		v, err := parseVariableDecl(decl)
		if err != nil {
			return err
		}
		sess.Variables = append(sess.Variables, v)
	}

	st, err := openSessionStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.CreateSession(sess); err != nil {
		return err
	}
	return output.Print(sess)
}

// parseVariableDecl parses name:label[:required][:approval].
func parseVariableDecl(decl string) (store.Variable, error) {
	parts := strings.Split(decl, ":")
	if len(parts) < 2 || parts[0] == "" {
		return store.Variable{}, fmt.Errorf("invalid --variable %q (expected name:label[:required][:approval])", decl)
	}
	v := store.Variable{Name: parts[0], Label: parts[1]}
	for _, flag := range parts[2:] {
		switch flag {
		case "required":
			v.Required = true
		case "approval":
			v.RequiresApproval = true
		default:
			return store.Variable{}, fmt.Errorf("unknown variable flag %q in %q", flag, decl)
		}
	}
	return v, nil
}
