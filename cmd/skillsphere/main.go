// Command skillsphere runs the SkillSphere web front end.
//
//	@title			SkillSphere Web
//	@version		1.0
//	@description	JSON endpoints of the SkillSphere web front end.
//	@BasePath		/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/skillsphere/web/docs"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "skillsphere",
		Short: "SkillSphere course marketplace web front end",
		Long: `SkillSphere serves the course marketplace pages.

Students browse their enrollments, instructors manage the courses they
publish. Course data lives in the backend API; accounts and sessions are
kept here in MongoDB and Redis.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		userCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
