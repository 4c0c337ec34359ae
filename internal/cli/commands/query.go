package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/pgdao/internal/cli/ui"
	"github.com/conduit-lang/pgdao/internal/orm/crud"
	"github.com/conduit-lang/pgdao/internal/orm/mapper"
	"github.com/conduit-lang/pgdao/internal/orm/query"
)

type queryOptions struct {
	filter    string
	where     map[string]string
	sort      string
	pageSize  int
	pageIndex int
	count     bool
	jsonOut   bool
}

func newQueryCommand(global *globalOptions) *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query <resource>",
		Short: "List the objects of a resource",
		Long: `List the objects of a configured resource.

Filters use the list grammar, combined with AND with any --where pairs:

  pgdao query articles --filter '["$and",["status","=","published"],["$notnull","publishedAt"]]'
  pgdao query articles --where author.firstName=Ada --sort -publishedAt,title --page-size 20 --page 2
  pgdao query articles --where status=draft --count`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, global, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.filter, "filter", "", "filter expression as JSON")
	cmd.Flags().StringToStringVar(&opts.where, "where", nil, "equality filters as field=value")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "sort fields, '-' prefix for descending")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "rows per page")
	cmd.Flags().IntVar(&opts.pageIndex, "page", 1, "1-based page index, used with --page-size")
	cmd.Flags().BoolVar(&opts.count, "count", false, "print the number of matching objects")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print JSON instead of a table")

	return cmd
}

func runQuery(cmd *cobra.Command, global *globalOptions, opts *queryOptions, resource string) error {
	listOpts, err := opts.listOptions()
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), global)
	if err != nil {
		return err
	}
	defer a.Close()

	dao, err := a.dao(resource)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.count {
		count, err := dao.Count(cmd.Context(), listOpts.Filter)
		if err != nil {
			return err
		}
		if opts.jsonOut {
			return writeJSON(out, map[string]int64{"count": count})
		}
		fmt.Fprintln(out, count)
		return nil
	}

	objects, err := dao.All(cmd.Context(), listOpts)
	if err != nil {
		return err
	}
	return writeObjects(out, objects, opts.jsonOut, global.noColor)
}

// listOptions turns the flags into DAO list options
func (o *queryOptions) listOptions() (crud.ListOptions, error) {
	var filters query.And

	if o.filter != "" {
		filter, err := query.ParseFilterJSON([]byte(o.filter))
		if err != nil {
			return crud.ListOptions{}, err
		}
		filters = append(filters, filter)
	}

	fields := make([]string, 0, len(o.where))
	for field := range o.where {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		filters = append(filters, query.Eq(field, o.where[field]))
	}

	if err := query.ValidateFilter(filters); err != nil {
		return crud.ListOptions{}, err
	}

	var result crud.ListOptions
	switch len(filters) {
	case 0:
	case 1:
		result.Filter = filters[0]
	default:
		result.Filter = filters
	}

	sortBy, err := query.ParseSortSpec(o.sort)
	if err != nil {
		return crud.ListOptions{}, err
	}
	if err := query.ValidateSort(sortBy); err != nil {
		return crud.ListOptions{}, err
	}
	result.Sort = sortBy

	if o.pageSize != 0 {
		if o.pageSize < 1 || o.pageIndex < 1 {
			return crud.ListOptions{}, fmt.Errorf("%w: --page-size and --page must be positive", query.ErrInvalidPagingShape)
		}
		result.Paging = &query.Paging{Size: o.pageSize, Index: o.pageIndex}
	}

	return result, nil
}

func writeObjects(w io.Writer, objects []mapper.Object, jsonOut, noColor bool) error {
	if jsonOut {
		return writeJSON(w, objects)
	}
	if len(objects) == 0 {
		fmt.Fprintln(w, strings.TrimSpace(ui.FormatError(ui.ErrorOptions{
			Level:   ui.ErrorLevelInfo,
			Problem: "no rows",
			NoColor: noColor,
		})))
		return nil
	}
	ui.ObjectTable(w, objects, noColor).Render()
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
