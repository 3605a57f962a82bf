package crawl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dreamerjackson/listcrawler/config"
	"github.com/dreamerjackson/listcrawler/engine"
	"github.com/dreamerjackson/listcrawler/generator"
	"github.com/dreamerjackson/listcrawler/limiter"
	"github.com/dreamerjackson/listcrawler/log"
	"github.com/dreamerjackson/listcrawler/parse/quotes"
	"github.com/dreamerjackson/listcrawler/proxy"
	"github.com/dreamerjackson/listcrawler/robots"
	"github.com/dreamerjackson/listcrawler/spider"
	"github.com/dreamerjackson/listcrawler/sqldb"
	"github.com/dreamerjackson/listcrawler/storage"
	"github.com/dreamerjackson/listcrawler/storage/sqlstorage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var CrawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "crawl a paginated listing and save its records.",
	Long:  "crawl a paginated listing, honouring robots.txt, and save the records as csv or json.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), flags)
	},
}

// Flags are the command line settings; they win over the config file.
type Flags struct {
	URL        string
	Format     string
	Out        string
	ConfigPath string
	Agent      string
	OnUnknown  string
	MaxPages   int // negative means use the config value
}

var flags Flags

func init() {
	CrawlCmd.Flags().StringVar(
		&flags.URL, "url", "", "start URL, prompted for when empty")

	CrawlCmd.Flags().StringVar(
		&flags.Format, "format", "", "output format csv or json, prompted for when empty")

	CrawlCmd.Flags().StringVarP(
		&flags.Out, "out", "o", "", "output file (default <output.dir>/quotes.<format>)")

	CrawlCmd.Flags().StringVar(
		&flags.ConfigPath, "config", "", "config file (default ./config.toml, then the user config dir)")

	CrawlCmd.Flags().StringVar(
		&flags.Agent, "agent", "", "robots.txt agent name (default the User-Agent)")

	CrawlCmd.Flags().StringVar(
		&flags.OnUnknown, "on-unknown", "", "when robots.txt cannot be read: ask, allow or deny")

	CrawlCmd.Flags().IntVar(
		&flags.MaxPages, "max-pages", -1, "stop after this many pages, 0 for no limit")
}

// Run performs one crawl: it settles the target and format, walks the
// listing and writes whatever records it collected.
func Run(ctx context.Context, in io.Reader, out io.Writer, f Flags) error {
	path, err := config.Find(f.ConfigPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	logger, closer, err := log.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()
	defer logger.Sync()

	if path != "" {
		logger.Info("config loaded", zap.String("path", path))
	}

	prompter := NewPrompter(in, out)

	target := f.URL
	if target == "" {
		if target, err = prompter.Ask(ctx, urlQuestion); err != nil {
			return fmt.Errorf("read url: %w", err)
		}
	}
	if target == "" {
		return errors.New("no url given")
	}

	formatText := f.Format
	if formatText == "" {
		if formatText, err = prompter.Ask(ctx, formatQuestion); err != nil {
			return fmt.Errorf("read file type: %w", err)
		}
	}
	format, err := storage.ParseFormat(formatText)
	if err != nil {
		fmt.Fprintln(out, "Unsupported file type. Please choose 'csv' or 'json'.")
		return err
	}

	outPath := f.Out
	if outPath == "" {
		outPath = filepath.Join(cfg.Output.Dir, storage.DefaultFileName(format))
	}

	onUnknown := cfg.Crawl.OnUnknown
	if f.OnUnknown != "" {
		onUnknown = f.OnUnknown
	}
	unknown, err := robots.ParseUnknownPolicy(onUnknown, prompter.Continue)
	if err != nil {
		return err
	}

	maxPages := cfg.Crawl.MaxPages
	if f.MaxPages >= 0 {
		maxPages = f.MaxPages
	}

	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}

	agent := cfg.Fetcher.UserAgent
	if f.Agent != "" {
		agent = f.Agent
	}
	evaluator := robots.New(
		robots.WithFetcher(fetcher),
		robots.WithAgent(agent),
		robots.WithLogger(logger.Named("robots")),
	)

	extractor := quotes.New(
		quotes.WithSelectors(cfg.Crawl.Selectors),
		quotes.WithLogger(logger.Named("extract")),
	)

	runID := "0"
	if ids, err := generator.NewRunIDs(generator.LocalIP()); err != nil {
		logger.Warn("run id generator unavailable", zap.Error(err))
	} else {
		runID = ids.Next()
	}

	mirror, err := newMirror(cfg, logger)
	if err != nil {
		return err
	}
	if c, ok := mirror.(io.Closer); ok {
		defer func() {
			if cerr := c.Close(); cerr != nil {
				logger.Error("close sql storage failed", zap.Error(cerr))
			}
		}()
	}

	crawler, err := engine.New(
		engine.WithFetcher(fetcher),
		engine.WithExtractor(extractor),
		engine.WithPolicy(evaluator),
		engine.WithUnknownPolicy(unknown),
		engine.WithLimiter(newLimiter(cfg)),
		engine.WithStorage(mirror),
		engine.WithMaxPages(maxPages),
		engine.WithRunID(runID),
		engine.WithLogger(logger.Named("engine")),
	)
	if err != nil {
		return err
	}

	res := crawler.Run(ctx, target)

	if err := storage.WriteFile(outPath, format, res.Records); err != nil {
		logger.Error("save data failed", zap.String("path", outPath), zap.Error(err))
		return fmt.Errorf("save data: %w", err)
	}

	if !res.Clean() {
		fmt.Fprintf(out, "Crawl stopped early (%s): %d records salvaged: %v\n", res.Reason, len(res.Records), res.Err)
	}
	fmt.Fprintf(out, "Data saved to %s (%d records)\n", outPath, len(res.Records))

	return nil
}

func newFetcher(cfg *config.Config, logger *zap.Logger) (spider.Fetcher, error) {
	opts := []spider.FetchOption{
		spider.WithUserAgent(cfg.Fetcher.UserAgent),
		spider.WithTimeout(cfg.Fetcher.Timeout),
		spider.WithBandwidth(cfg.Fetcher.Bandwidth),
		spider.WithFetchLogger(logger.Named("fetch")),
	}

	if len(cfg.Fetcher.Proxy) > 0 {
		p, err := proxy.RoundRobinProxySwitcher(cfg.Fetcher.Proxy...)
		if err != nil {
			return nil, fmt.Errorf("proxy: %w", err)
		}
		logger.Info("proxy list", zap.Strings("proxy", cfg.Fetcher.Proxy))
		opts = append(opts, spider.WithProxy(p))
	}

	return spider.NewFetchService(opts...), nil
}

func newLimiter(cfg *config.Config) limiter.RateLimiter {
	delay := limiter.NewRandomDelay(cfg.Crawl.MinDelay, cfg.Crawl.MaxDelay)
	if cfg.Crawl.RatePerMinute <= 0 {
		return delay
	}
	return limiter.Multi(
		delay,
		rate.NewLimiter(limiter.Per(cfg.Crawl.RatePerMinute, time.Minute), 1),
	)
}

func newMirror(cfg *config.Config, logger *zap.Logger) (spider.DataRepository, error) {
	var driver string
	switch cfg.Storage.Type {
	case "":
		return &spider.EmptyDataRepository{}, nil
	case "mysql":
		driver = sqldb.DriverMySQL
	case "sqlite":
		driver = sqldb.DriverSQLite
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}

	s, err := sqlstorage.New(
		sqlstorage.WithDriver(driver),
		sqlstorage.WithSQLURL(cfg.Storage.SQLURL),
		sqlstorage.WithBatchCount(cfg.Storage.BatchCount),
		sqlstorage.WithLogger(logger.Named("sqlDB")),
	)
	if err != nil {
		return nil, err
	}
	logger.Info("start sql storage", zap.String("type", cfg.Storage.Type))

	return s, nil
}
