package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"daycal/internal/calendar"
	"daycal/internal/config"
	"daycal/internal/ics"
	"daycal/internal/importer"
	appLog "daycal/internal/log"
	"daycal/internal/memcheck"
	"daycal/internal/model"
	"daycal/internal/scenario"
	"daycal/internal/schedule"
	"daycal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	serve      bool
	scenario   bool
	memcheck   bool
	quiet      bool
}

func main() {
	// A missing .env is normal; it only seeds DAYCAL_* defaults.
	_ = godotenv.Load()

	flags := parseFlags()

	if flags.scenario {
		res := scenario.Run(os.Stdout, scenario.Default())
		if !res.OK() {
			appLog.Info("scenario failed", "failed_steps", res.Failed(), "outstanding", res.Outstanding)
			os.Exit(1)
		}
		return
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if lvl, err := appLog.ParseLevel(conf.LogLevel); err != nil {
		appLog.Error("invalid log level; using INFO", err)
	} else {
		appLog.SetLevel(lvl)
	}

	appLog.Info("effective config",
		"name", conf.Name,
		"days", conf.Days,
		"order", conf.Order,
		"start_date", conf.StartDate,
		"timezone", conf.Timezone,
		"events", len(conf.Events),
		"ics_count", len(conf.ICS),
		"schedules", len(conf.Schedules),
		"serve", flags.serve,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	var tracker *memcheck.Tracker
	if flags.memcheck {
		tracker = memcheck.New(0)
	}

	if err := run(ctx, conf, flags, tracker); err != nil {
		appLog.Error("daycal failed", err)
		os.Exit(1)
	}

	if tracker != nil {
		_ = tracker.Report(os.Stderr)
		if !tracker.Clean() {
			os.Exit(1)
		}
	}
	appLog.Info("daycal exiting")
}

func run(ctx context.Context, conf *config.Config, flags flagConfig, tracker *memcheck.Tracker) error {
	order, err := calendar.OrderFor(conf.Order)
	if err != nil {
		return err
	}

	opts := []calendar.Option{calendar.WithRelease(releasePayload)}
	if tracker != nil {
		opts = append(opts, calendar.WithAllocator(tracker))
	}
	cal, err := calendar.New(conf.Name, conf.Days, order, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := cal.Destroy(); err != nil {
			appLog.Error("destroy calendar failed", err)
		}
	}()

	entries, err := loadEntries(ctx, conf, time.Now())
	if err != nil {
		return err
	}
	importer.Populate(cal, entries)

	if !flags.quiet {
		if err := cal.Print(os.Stdout, conf.Verbose); err != nil {
			return err
		}
	}

	if flags.serve {
		return web.NewServer(conf, cal).Run(ctx)
	}
	return nil
}

// releasePayload is the calendar's payload release hook. Payloads are
// strings, so there is nothing to free beyond dropping the reference.
func releasePayload(p any) {
	appLog.Debug("payload released", "payload", p)
}

// loadEntries gathers seed events, ICS feeds and cron schedules.
func loadEntries(ctx context.Context, conf *config.Config, now time.Time) ([]model.Entry, error) {
	loc, err := conf.Location()
	if err != nil {
		appLog.Error("invalid timezone; using UTC", err, "timezone", conf.Timezone)
	}
	firstDay, err := conf.FirstDay(now, loc)
	if err != nil {
		return nil, err
	}

	entries := make([]model.Entry, 0, len(conf.Events))
	for _, e := range conf.Events {
		entries = append(entries, model.Entry{
			SourceID:  "config",
			Name:      e.Name,
			Day:       e.Day,
			StartTime: e.StartTime,
			Duration:  e.Duration,
			Info:      e.Info,
		})
	}

	if len(conf.ICS) > 0 {
		entries = append(entries, loadICS(ctx, conf, loc, firstDay)...)
	}

	if len(conf.Schedules) > 0 {
		specs := make([]schedule.Spec, 0, len(conf.Schedules))
		for _, s := range conf.Schedules {
			specs = append(specs, schedule.Spec{Name: s.Name, Cron: s.Cron, Duration: s.Duration, Info: s.Info})
		}
		scheduled, _ := schedule.Expand(specs, schedule.Range{
			Location: loc,
			FirstDay: firstDay,
			Days:     conf.Days,
		})
		entries = append(entries, scheduled...)
	}

	return entries, nil
}

func loadICS(ctx context.Context, conf *config.Config, loc *time.Location, firstDay time.Time) []model.Entry {
	sources := make([]ics.Source, 0, len(conf.ICS))
	for _, csrc := range conf.ICS {
		if csrc.URL == "" {
			continue
		}
		id := csrc.ID
		if id == "" {
			if csrc.Name != "" {
				id = csrc.Name
			} else {
				id = csrc.URL
			}
		}
		sources = append(sources, ics.Source{ID: id, URL: csrc.URL})
	}

	results, _ := ics.NewFetcher(nil).FetchAll(ctx, sources)

	parsed := make([]ics.ParsedEvent, 0)
	for _, res := range results {
		events, err := ics.ParseICS(res.Source, res.Body)
		if err != nil {
			continue
		}
		parsed = append(parsed, events...)
	}

	expanded, err := ics.Expand(parsed, ics.ExpandConfig{
		Location: loc,
		FirstDay: firstDay,
		Days:     conf.Days,
	})
	if err != nil {
		appLog.Error("ics expand failed", err)
		return nil
	}
	return expanded.Entries
}

func parseFlags() flagConfig {
	var cfg flagConfig

	defaultConfig := os.Getenv("DAYCAL_CONFIG")
	if defaultConfig == "" {
		defaultConfig = "./daycal.yaml"
	}

	flag.StringVar(&cfg.configPath, "config", defaultConfig, "Path to config file (env DAYCAL_CONFIG)")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.serve, "serve", false, "Serve the calendar over HTTP until interrupted")
	flag.BoolVar(&cfg.scenario, "scenario", false, "Run the built-in calendar scenario checks and exit")
	flag.BoolVar(&cfg.memcheck, "memcheck", false, "Track calendar allocations and report leaks on exit")
	flag.BoolVar(&cfg.quiet, "quiet", false, "Do not print the calendar report")

	flag.Parse()

	return cfg
}
