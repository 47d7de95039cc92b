package cmd

import (
	"fmt"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/classify"
	"github.com/spf13/cobra"
)

var (
	rolesFilter string
	rolesAll    bool
)

var rolesCmd = &cobra.Command{
	Use:   "roles [bin]",
	Short: "Group a bin's mobs by role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		roles := classify.Roles
		if rolesFilter != "" {
			roles = nil
			for _, r := range classify.Roles {
				if r.Slug() == rolesFilter {
					roles = []classify.Role{r}
				}
			}
			if roles == nil {
				return fmt.Errorf("unknown role %q", rolesFilter)
			}
		}

		b, err := openBin(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = b.Close() }()

		includeReference := rolesAll || cfg.AllowReferenceClips
		out := cmd.OutOrStdout()
		for _, role := range roles {
			mobs := b.ByRole(role, includeReference)
			if len(mobs) == 0 {
				continue
			}
			fmt.Fprintf(out, "%s (%d)\n", role, len(mobs))
			for _, m := range mobs {
				fmt.Fprintf(out, "  %s\n", m.Name)
			}
		}

		unknown := b.Filter(includeReference, func(m *avb.Mob) bool {
			_, err := classify.Classify(m)
			return err != nil
		})
		if rolesFilter == "" && len(unknown) > 0 {
			fmt.Fprintf(out, "Unrecognized (%d)\n", len(unknown))
			for _, m := range unknown {
				fmt.Fprintf(out, "  %s (mob type %d, usage %d)\n", m.Name, m.MobTypeID, m.UsageCode)
			}
		}
		return nil
	},
}

func init() {
	rolesCmd.Flags().StringVarP(&rolesFilter, "role", "r", "", "Only this role, as a slug such as master_clip")
	rolesCmd.Flags().BoolVarP(&rolesAll, "all", "a", false, "Include reference clips that are not placed in the bin")
	rootCmd.AddCommand(rolesCmd)
}
