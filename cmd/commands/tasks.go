package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ncobase/taskdesk/biz/task/query"
	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/types"
	"github.com/spf13/cobra"
)

// NewTasksCommand creates the tasks command, which prints the sample board
// through the same filter and ordering the HTTP listing uses.
func NewTasksCommand() *cobra.Command {
	return newTasksCommand(types.SystemClock)
}

func newTasksCommand(clock types.Clock) *cobra.Command {
	var (
		q      structs.BoardQuery
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "tasks",
		Args:  cobra.NoArgs,
		Short: "List the sample board",
		RunE: func(cmd *cobra.Command, args []string) error {
			all := structs.SampleTasks()
			view := query.Apply(all, q.Filters(), q.Sort())
			stats := query.Summarize(all, clock.Now())
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"tasks": view, "stats": stats})
			}
			return printTasks(cmd.OutOrStdout(), view, stats)
		},
	}

	f := cmd.Flags()
	f.StringVar(&q.TaskType, "type", "", "only tasks of this type")
	f.StringVar(&q.Status, "status", "", "open or closed")
	f.StringVar(&q.ContactPerson, "contact", "", "only tasks with this contact person")
	f.StringVar(&q.EntityName, "entity", "", "entity name substring, case-insensitive")
	f.StringVar(&q.Start, "start", "", "earliest scheduled date (YYYY-MM-DD)")
	f.StringVar(&q.End, "end", "", "latest scheduled date (YYYY-MM-DD)")
	f.StringVar(&q.SortBy, "sort", "", "sort field (default scheduledTime)")
	f.StringVar(&q.SortOrder, "order", "", "asc or desc")
	f.BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func printTasks(out io.Writer, tasks []structs.Task, stats query.Stats) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCHEDULED\tTYPE\tENTITY\tCONTACT\tSTATUS")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.ScheduledTime, t.TaskType, t.EntityName, t.ContactPerson, t.Status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\n%d shown, %d total, %d open, %d closed, %d overdue\n",
		len(tasks), stats.Total, stats.Open, stats.Closed, stats.Overdue)
	return err
}
