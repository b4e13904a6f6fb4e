package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	"faultwatch/internal/api"
	"faultwatch/internal/ingest"
	"faultwatch/internal/models"
	"faultwatch/internal/notify"
	"faultwatch/internal/pipeline"
	"faultwatch/internal/predict"
	"faultwatch/internal/report"
)

type Globals struct {
	OpenAIKey   string `env:"OPENAI_API_KEY" help:"OpenAI API key. When unset, the deterministic heuristic oracle is used."`
	OpenAIModel string `env:"OPENAI_MODEL" help:"Chat model for the OpenAI oracle."`

	SMTPHost   string `env:"SMTP_HOST" default:"smtp.gmail.com" help:"SMTP submission host."`
	SMTPPort   int    `env:"SMTP_PORT" default:"587" help:"SMTP submission port."`
	Sender     string `env:"REPORT_SENDER" help:"Report sender address."`
	Password   string `env:"REPORT_PASSWORD" help:"Sender credential (app password)."`
	Recipients string `env:"REPORT_RECIPIENTS" help:"Comma-separated recipient list."`
}

type CLI struct {
	Globals

	Run   RunCmd   `cmd:"" help:"Ingest alarm logs, run one prediction batch and write the report."`
	Serve ServeCmd `cmd:"" help:"Start the interactive dashboard server."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("faultwatch"),
		kong.Description("Future fault prediction over heterogeneous alarm-log exports."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)
	kctx.FatalIfErrorf(kctx.Run(&cli.Globals))
}

// newPipeline assembles the oracle and dispatcher from configuration.
// Missing email configuration degrades to "not configured", never an
// error.
func newPipeline(g *Globals) (*pipeline.Pipeline, error) {
	var oracle predict.Oracle
	if g.OpenAIKey != "" {
		o, err := predict.NewOpenAIOracle(g.OpenAIKey, g.OpenAIModel)
		if err != nil {
			return nil, err
		}
		oracle = o
	} else {
		log.Println("no OpenAI key configured, using heuristic oracle")
		oracle = predict.NewHeuristicOracle()
	}

	var mailer notify.Mailer
	var recipients []string
	if g.Sender != "" && g.Password != "" && g.Recipients != "" {
		mailer = notify.NewSMTPMailer(g.SMTPHost, g.SMTPPort, g.Sender, g.Password)
		for _, r := range strings.Split(g.Recipients, ",") {
			if r = strings.TrimSpace(r); r != "" {
				recipients = append(recipients, r)
			}
		}
	}
	dispatcher := notify.NewDispatcher(mailer, recipients)
	if !dispatcher.Configured() {
		log.Println("email not configured, notifications will be skipped")
	}

	return pipeline.New(oracle, dispatcher), nil
}

type RunCmd struct {
	Files     []string `arg:"" optional:"" type:"existingfile" help:"Alarm-log exports (CSV/XLSX)."`
	Output    string   `default:"future_fault_report.csv" help:"Report CSV path."`
	ChartsDir string   `help:"Directory for chart PNGs (omit to skip charts)."`

	Sites []string `help:"Restrict the report to these sites (default: all)."`
	Risks []string `default:"LOW,MEDIUM,HIGH" help:"Risk levels to include."`

	FTPAddr string `env:"FTP_ADDR" help:"FTP drop directory host:port to fetch a batch from."`
	FTPUser string `env:"FTP_USER" help:"FTP user (default anonymous)."`
	FTPPass string `env:"FTP_PASS" help:"FTP password."`
	FTPDir  string `env:"FTP_DIR" default:"/" help:"Remote directory holding the exports."`
}

func (c *RunCmd) Run(g *Globals) error {
	p, err := newPipeline(g)
	if err != nil {
		return err
	}

	var files []ingest.BatchFile
	for _, path := range c.Files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, ingest.BatchFile{Name: filepath.Base(path), Data: data})
	}

	if c.FTPAddr != "" {
		source := ingest.NewFTPSource(c.FTPAddr, c.FTPUser, c.FTPPass, c.FTPDir)
		fetched, err := source.FetchBatch()
		if err != nil {
			return fmt.Errorf("fetch batch: %w", err)
		}
		log.Printf("fetched %d files from %s", len(fetched), c.FTPAddr)
		files = append(files, fetched...)
	}

	criteria, err := c.criteria()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var state notify.SessionState
	result, err := p.Run(ctx, files, criteria, &state)
	if err != nil {
		return err
	}
	for _, ferr := range result.FileErrors {
		log.Printf("warning: %v", ferr)
	}

	switch result.Outcome {
	case pipeline.OutcomeNoRisk:
		log.Println("no significant future fault risk detected")
		return nil
	case pipeline.OutcomeNoFilterMatch:
		log.Println("no results match the selected filters")
		return nil
	}

	data, err := report.ExportCSV(result.Filtered)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.Output, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	log.Printf("wrote %d predictions to %s", len(result.Filtered), c.Output)

	if c.ChartsDir != "" {
		if err := writeCharts(c.ChartsDir, result.Views); err != nil {
			return err
		}
	}

	printSummary(result)
	return nil
}

func (c *RunCmd) criteria() (models.FilterCriteria, error) {
	criteria := models.FilterCriteria{
		Sites:      map[string]bool{},
		RiskLevels: map[models.RiskLevel]bool{},
	}
	for _, site := range c.Sites {
		criteria.Sites[site] = true
	}
	for _, raw := range c.Risks {
		level, ok := models.ParseRiskLevel(raw)
		if !ok {
			return criteria, fmt.Errorf("unknown risk level %q", raw)
		}
		criteria.RiskLevels[level] = true
	}
	return criteria, nil
}

func printSummary(result *pipeline.Result) {
	for _, rc := range result.Views.RiskDistribution {
		log.Printf("risk %-6s %d", rc.RiskLevel, rc.Count)
	}
	for _, sc := range result.Views.SiteCounts {
		log.Printf("site %-12s %d", sc.Site, sc.Count)
	}
	if result.Notified {
		log.Println("report emailed")
	} else if result.NotifyErr != nil {
		log.Printf("notification: %v", result.NotifyErr)
	}
}

type ServeCmd struct {
	Port string `env:"PORT" default:"8080" help:"HTTP server port."`
}

func (c *ServeCmd) Run(g *Globals) error {
	p, err := newPipeline(g)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := api.NewServer(p, c.Port)
	log.Printf("starting server on :%s", c.Port)
	return server.Run(ctx)
}
