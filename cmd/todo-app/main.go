package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"tasklist/internal/clock"
	"tasklist/internal/config"
	"tasklist/internal/controller"
	"tasklist/internal/export"
	"tasklist/internal/logger"
	"tasklist/internal/manager"
	"tasklist/internal/models"
	"tasklist/internal/notify"
	"tasklist/internal/storage"
	"tasklist/internal/tui"
)

type app struct {
	cfg   config.Config
	store *storage.Store
	repo  *manager.TaskManager
	notes *notify.Service
	ui    *cliPresenter
	ctl   *controller.Controller
}

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	command := os.Args[1]
	if command == "tui" {
		os.Exit(runTUI(cfg))
	}

	a, err := newApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		os.Exit(1)
	}

	var code int
	switch command {
	case "add":
		code = a.handleAddCommand(os.Args[2:])
	case "list":
		code = a.handleListCommand(os.Args[2:])
	case "toggle":
		code = a.handleToggleCommand(os.Args[2:])
	case "delete":
		code = a.handleDeleteCommand(os.Args[2:])
	case "export":
		code = a.handleExportCommand(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printHelp()
		code = 1
	}

	a.close()
	os.Exit(code)
}

func newApp(cfg config.Config) (*app, error) {
	store, err := cfg.OpenStore()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:   cfg,
		store: store,
		repo:  manager.NewTaskManager(store, clock.System{}),
		notes: notify.New(cfg.NotifyTTL, notify.WriterSink{W: os.Stdout}),
		ui:    &cliPresenter{out: os.Stdout, errOut: os.Stderr},
	}
	a.ctl = controller.New(a.repo, a.notes, a.ui, clock.System{})
	a.ctl.Start()
	return a, nil
}

func (a *app) close() {
	a.notes.Clear()
	writeMetrics(a.cfg.MetricsFile)
	if err := a.store.Close(); err != nil {
		logger.Error(context.Background(), err, "close storage")
	}
}

func (a *app) handleAddCommand(args []string) int {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	title := addCmd.String("title", "", "Task title")
	date := addCmd.String("date", clock.Today(clock.System{}), "Due date (YYYY-MM-DD)")
	priority := addCmd.String("priority", string(models.PriorityDaily), "Priority (important|daily)")
	addCmd.Parse(args)

	if !a.ctl.Submit(controller.Form{Title: *title, Date: *date, Priority: *priority}) {
		return 1
	}
	return 0
}

func (a *app) handleListCommand(args []string) int {
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	filter := listCmd.String("filter", "all", "Filter tasks (all|todo|done)")
	listCmd.Parse(args)

	f, err := models.ParseFilter(*filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v: %s\n", err, *filter)
		return 1
	}
	a.ctl.SelectFilter(f)
	a.ui.printView()
	return 0
}

func (a *app) handleToggleCommand(args []string) int {
	toggleCmd := flag.NewFlagSet("toggle", flag.ExitOnError)
	id := toggleCmd.Int64("id", 0, "Task ID to toggle")
	toggleCmd.Parse(args)

	if !a.requireTask(*id) {
		return 1
	}
	a.ctl.Toggle(*id)
	return 0
}

func (a *app) handleDeleteCommand(args []string) int {
	deleteCmd := flag.NewFlagSet("delete", flag.ExitOnError)
	id := deleteCmd.Int64("id", 0, "Task ID to delete")
	yes := deleteCmd.Bool("yes", false, "Delete without asking")
	deleteCmd.Parse(args)

	if !a.requireTask(*id) {
		return 1
	}

	a.ctl.RequestDelete(*id)
	if *yes || confirm(a.ui.prompt) {
		a.ctl.ConfirmDelete()
	} else {
		a.ctl.CancelDelete()
		fmt.Println("Kept")
	}
	return 0
}

func (a *app) handleExportCommand(args []string) int {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	format := exportCmd.String("format", export.FormatJSON, "Export format (json|csv|pdf)")
	outFile := exportCmd.String("out", "", "Output file path")
	filter := exportCmd.String("filter", "all", "Filter tasks (all|todo|done)")
	exportCmd.Parse(args)

	if *outFile == "" {
		fmt.Fprintln(os.Stderr, "Error: --out is required")
		return 1
	}
	f, err := models.ParseFilter(*filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v: %s\n", err, *filter)
		return 1
	}

	a.ctl.SelectFilter(f)
	data, err := export.Export(*format, a.ctl.View())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting tasks: %v\n", err)
		return 1
	}
	if err := os.WriteFile(*outFile, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *outFile, err)
		return 1
	}

	fmt.Printf("Tasks exported to %s in %s format\n", *outFile, *format)
	return 0
}

func (a *app) requireTask(id int64) bool {
	if id == 0 {
		fmt.Fprintln(os.Stderr, "Error: --id is required")
		return false
	}
	if _, err := a.repo.GetTask(id); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v: %d\n", err, id)
		return false
	}
	return true
}

func runTUI(cfg config.Config) int {
	store, err := cfg.OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		return 1
	}
	defer store.Close()
	defer writeMetrics(cfg.MetricsFile)

	clk := clock.System{}
	screen := tui.NewScreen()
	notes := notify.New(cfg.NotifyTTL, screen.Sink())
	ctl := controller.New(manager.NewTaskManager(store, clk), notes, screen, clk)

	if err := tui.Run(ctl, notes, screen, clk); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func writeMetrics(path string) {
	if path == "" {
		return
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		logger.Error(context.Background(), err, "write metrics", "path", path)
	}
}

func printHelp() {
	fmt.Println(`Usage: todo <command> [flags]

Commands:
  add     --title="..." [--date=YYYY-MM-DD] [--priority=important|daily]  Add new task
  list    [--filter=all|todo|done]                                      List tasks
  toggle  --id=ID                                                       Mark task done or reopen it
  delete  --id=ID [--yes]                                               Delete task
  export  --format=json|csv|pdf --out=FILE [--filter=all|todo|done]     Export tasks
  tui                                                                   Interactive mode

Storage:
  Configured with STORE_DRIVER (file|sqlite|mysql|postgres), STORE_PATH,
  STORE_DSN and STORE_SLOT, read from the environment or a .env file.`)
}
