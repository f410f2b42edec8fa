// Command admin manages groups and accounts out of band.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/repository"
	"yatube/internal/service"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type services struct {
	groups *service.GroupService
	users  *service.UserService
}

var svc services

var rootCmd = &cobra.Command{
	Use:           "admin [command]",
	Short:         "Administrative tasks for yatube",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		db, err := database.Connect(cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		svc = services{
			groups: service.NewGroupService(repository.NewGroupRepository(db)),
			users:  service.NewUserService(repository.NewUserRepository(db)),
		}
		return nil
	},
}

func init() {
	groupsCmd.AddCommand(groupsCreateCmd, groupsImportCmd, groupsListCmd, groupsDeleteCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	rootCmd.AddCommand(groupsCmd, usersCmd)

	groupsCreateCmd.Flags().String("description", "", "Group description")
}

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage groups",
}

var groupsCreateCmd = &cobra.Command{
	Use:   "create <slug> <title>",
	Short: "Create a group, or update the one with this slug",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		group, err := svc.groups.SaveGroup(cmd.Context(), service.SaveGroupInput{
			Slug:        args[0],
			Title:       args[1],
			Description: description,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved group %s (id %d)\n", bold(group.Slug), group.ID)
		return nil
	},
}

var groupsImportCmd = &cobra.Command{
	Use:   "import <file.yml>",
	Short: "Create or update every group listed in a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		inputs, err := parseGroups(f)
		if err != nil {
			return err
		}
		n, err := importGroups(cmd.Context(), svc.groups, inputs)
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d groups\n", n, len(inputs))
		return err
	},
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, err := svc.groups.ListGroups(cmd.Context())
		if err != nil {
			return err
		}
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetAutoWrapText(false)
		table.SetHeader([]string{"ID", "Slug", "Title"})
		for _, g := range groups {
			table.Append([]string{strconv.FormatUint(uint64(g.ID), 10), g.Slug, g.Title})
		}
		table.Render()
		return nil
	},
}

var groupsDeleteCmd = &cobra.Command{
	Use:   "delete <slug>",
	Short: "Delete a group; its posts stay without a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := svc.groups.DeleteGroup(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted group %s\n", bold(args[0]))
		return nil
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage accounts",
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete an account with its posts and comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := svc.users.DeleteUser(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted user %s\n", bold(args[0]))
		return nil
	},
}

// groupFile is the YAML layout read by "groups import".
type groupFile struct {
	Groups []service.SaveGroupInput `yaml:"groups"`
}

func parseGroups(r io.Reader) ([]service.SaveGroupInput, error) {
	var file groupFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse groups: %w", err)
	}
	return file.Groups, nil
}

// importGroups saves groups in order and stops at the first failure.
func importGroups(ctx context.Context, groups *service.GroupService, inputs []service.SaveGroupInput) (int, error) {
	for i, in := range inputs {
		if _, err := groups.SaveGroup(ctx, in); err != nil {
			return i, fmt.Errorf("group %q: %w", in.Slug, err)
		}
	}
	return len(inputs), nil
}

var bold = color.New(color.Bold).SprintFunc()

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, color.New(color.FgRed).Sprint("Error:"), err)
		os.Exit(1)
	}
}
