// Command todo is a terminal front end for the donezo API.
//
//	todo [-api URL] list [-tab all|active|<category>] [-search TERM] [-hide-completed]
//	todo add [-category work] TASK...
//	todo edit [-category C] ID TASK...
//	todo toggle ID
//	todo delete ID
//	todo health
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"donezo/internal/client"
	"donezo/internal/model"
	"donezo/internal/view"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "todo:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	apiURL := fs.String("api", envOr("DONEZO_API_URL", "http://localhost:5000"), "API base URL")
	timeout := fs.Duration("timeout", 10*time.Second, "overall request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return errors.New("missing command: list, add, edit, toggle, delete or health")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c := client.New(*apiURL)
	cmd, cmdArgs := rest[0], rest[1:]

	if cmd == "health" {
		h, err := c.Health(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", h.Status, h.Timestamp)
		return nil
	}

	v := view.New(c)
	if err := v.Load(ctx); err != nil {
		return banner(v)
	}

	switch cmd {
	case "list":
		return list(v, cmdArgs, out)
	case "add":
		return add(ctx, v, cmdArgs, out)
	case "edit":
		return edit(ctx, v, cmdArgs, out)
	case "toggle":
		id, err := singleID(cmdArgs)
		if err != nil {
			return err
		}
		if err := v.ToggleCompleted(ctx, id); err != nil {
			return banner(v)
		}
		return render(v, out)
	case "delete":
		id, err := singleID(cmdArgs)
		if err != nil {
			return err
		}
		if err := v.Delete(ctx, id); err != nil {
			return banner(v)
		}
		return render(v, out)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func list(v *view.View, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	tab := fs.String("tab", view.TabAll, "all, active or a category")
	search := fs.String("search", "", "match task text or category label")
	hide := fs.Bool("hide-completed", false, "hide completed todos")
	if err := fs.Parse(args); err != nil {
		return err
	}

	v.SelectTab(*tab)
	v.SetSearch(*search)
	if *hide {
		v.SetShowCompleted(false)
	}
	return render(v, out)
}

func add(ctx context.Context, v *view.View, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	category := fs.String("category", model.CategoryWork, "category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	task := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(task) == "" {
		return errors.New("add: task is required")
	}
	if err := v.Add(ctx, task, *category); err != nil {
		return banner(v)
	}
	return render(v, out)
}

func edit(ctx context.Context, v *view.View, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	category := fs.String("category", "", "new category (default: keep)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errors.New("edit: usage: edit [-category C] ID TASK...")
	}

	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}

	cat := *category
	if cat == "" {
		for _, t := range v.State().Todos {
			if t.ID == id {
				cat = t.Category
			}
		}
	}

	if err := v.Edit(ctx, id, strings.Join(fs.Args()[1:], " "), cat); err != nil {
		return banner(v)
	}
	return render(v, out)
}

func render(v *view.View, out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tCATEGORY\tTASK")
	for _, t := range v.Filtered() {
		done := " "
		if t.Completed {
			done = "x"
		}
		fmt.Fprintf(tw, "%d\t[%s]\t%s\t%s\n", t.ID, done, v.CategoryLabel(t.Category), t.Task)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	c := v.Counts()
	_, err := fmt.Fprintf(out, "%d total, %d completed, %d remaining\n", c.Total, c.Completed, c.Remaining)
	return err
}

func banner(v *view.View) error {
	return errors.New(v.State().Error)
}

func singleID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one todo id")
	}
	return parseID(args[0])
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid todo id %q", s)
	}
	return id, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
