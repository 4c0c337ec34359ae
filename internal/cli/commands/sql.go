package commands

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/pgdao/internal/orm/crud"
)

// errAborted is returned when a statement is not confirmed
var errAborted = errors.New("aborted")

// confirm asks before a statement is executed; replaced in tests
var confirm = func(statement string) (bool, error) {
	ok := false
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Execute %q?", statement),
		Default: false,
	}
	if err := survey.AskOne(prompt, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

func newSQLCommand(global *globalOptions) *cobra.Command {
	var (
		exec    bool
		yes     bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "sql <statement> [params...]",
		Short: "Run a raw SQL statement",
		Long: `Run a raw SQL statement with positional parameters.

Rows are returned as nested camelCase objects, so a column named
author__first_name is shown as author.firstName:

  pgdao sql 'SELECT id, title FROM articles WHERE id = $1' 42
  pgdao sql --exec 'DELETE FROM articles WHERE status = $1' draft

--exec asks for confirmation unless --yes is given. The statement may write
any table, so a successful --exec clears the whole query cache.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if exec && !yes {
				ok, err := confirm(args[0])
				if err != nil {
					return err
				}
				if !ok {
					return errAborted
				}
			}

			a, err := newApp(cmd.Context(), global)
			if err != nil {
				return err
			}
			defer a.Close()

			params := make([]interface{}, len(args)-1)
			for i, arg := range args[1:] {
				params[i] = arg
			}

			out := cmd.OutOrStdout()
			if exec {
				result, err := crud.RawExec(cmd.Context(), a.db, args[0], params)
				if err != nil {
					return err
				}
				affected, err := result.RowsAffected()
				if err != nil {
					return err
				}
				a.clearCache(cmd.Context())
				fmt.Fprintf(out, "%d rows affected\n", affected)
				return nil
			}

			objects, err := crud.RawTransformedQuery(cmd.Context(), a.db, args[0], params)
			if err != nil {
				return err
			}
			return writeObjects(out, objects, jsonOut, global.noColor)
		},
	}

	cmd.Flags().BoolVar(&exec, "exec", false, "execute a statement that returns no rows")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the --exec confirmation")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print JSON instead of a table")

	return cmd
}
