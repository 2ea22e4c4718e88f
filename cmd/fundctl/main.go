// Command fundctl is the terminal front end for the public-infrastructure
// fund-tracking backend. Each subcommand is one screen: it checks the
// stored session against the screen's role requirement, fetches fresh
// data, and renders. Nothing is decided locally; the backend re-validates
// every action.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"fundtracker.org/internal/api"
	"fundtracker.org/internal/audit"
	"fundtracker.org/internal/config"
	"fundtracker.org/internal/guard"
	"fundtracker.org/internal/ids"
	"fundtracker.org/internal/obs"
	"fundtracker.org/internal/screens"
	"fundtracker.org/internal/session"
	"fundtracker.org/internal/workflow"
)

const (
	exitOK = iota
	exitError
	exitLoginRequired
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", config.DefaultPath(), "path to the configuration file")
	verbose := flag.Bool("v", false, "verbose console logging")
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fundctl:", err)
		return exitError
	}
	if *verbose {
		cfg.Log.Verbose = true
	}

	obs.Init(cfg.Log.Verbose)
	obs.RegisterMetrics()
	log := obs.Logger()
	defer func() { _ = log.Sync() }()

	store := session.New(session.NewStateFile(cfg.State.Path), log)
	if err := store.Restore(); err != nil {
		log.Warn("persisted session could not be restored", zap.Error(err))
	}

	client := api.New(cfg.API.BaseURL, store,
		api.WithLogger(log),
		api.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second}),
		api.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst),
	)
	env := &screens.Env{Session: store, API: client, Out: os.Stdout, Log: log}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = audit.WithNavigationID(ctx, ids.NewRequestID())

	args := flag.Args()
	if len(args) == 0 {
		usage()
		return exitError
	}

	err = dispatch(ctx, env, args[0], args[1:])
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, guard.ErrLoginRequired):
		fmt.Fprintln(os.Stderr, "This screen needs a login with an authorized role. Run: fundctl login <username> <password>")
		return exitLoginRequired
	default:
		fmt.Fprintln(os.Stderr, "fundctl:", err)
		return exitError
	}
}

func dispatch(ctx context.Context, env *screens.Env, command string, args []string) error {
	switch command {
	case "login":
		if len(args) != 2 {
			return errors.New("usage: fundctl login <username> <password>")
		}
		return screens.Login(ctx, env, args[0], args[1])

	case "register":
		if len(args) < 3 || len(args) > 4 {
			return errors.New("usage: fundctl register <username> <password> <role> [email]")
		}
		req := api.RegisterRequest{Username: args[0], Password: args[1], Role: args[2]}
		if len(args) == 4 {
			req.Email = args[3]
		}
		return screens.Register(ctx, env, req)

	case "logout":
		return screens.Logout(ctx, env)

	case "projects":
		return screens.PublicDashboard(ctx, env)

	case "project":
		id, err := parseID(args, "fundctl project <project-id>")
		if err != nil {
			return err
		}
		return screens.ProjectDetail(ctx, env, id)

	case "dashboard":
		return roleDashboard(ctx, env)

	case "approve":
		id, err := parseID(args, "fundctl approve <progress-id>")
		if err != nil {
			return err
		}
		return screens.ApproveProgress(ctx, env, id)

	case "reject":
		id, err := parseID(args, "fundctl reject <progress-id>")
		if err != nil {
			return err
		}
		return screens.RejectProgress(ctx, env, id)

	case "submit-progress":
		if len(args) != 3 {
			return errors.New("usage: fundctl submit-progress <project-id> <physical-%> <financial-%>")
		}
		projectID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad project id %q", args[0])
		}
		physical, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("bad physical progress %q", args[1])
		}
		financial, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("bad financial progress %q", args[2])
		}
		return screens.SubmitProgress(ctx, env, projectID, api.ProgressDraft{
			PhysicalProgress:  physical,
			FinancialProgress: financial,
		})

	case "issues":
		return screens.IssueManagement(ctx, env)

	case "report-issue":
		if len(args) < 4 {
			return errors.New("usage: fundctl report-issue <project-id> <type> <severity> <title> [description]")
		}
		projectID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad project id %q", args[0])
		}
		draft := api.IssueDraft{
			Project:   projectID,
			IssueType: workflow.IssueType(strings.ToUpper(args[1])),
			Severity:  workflow.Severity(strings.ToUpper(args[2])),
			Title:     args[3],
		}
		if len(args) > 4 {
			draft.Description = strings.Join(args[4:], " ")
		}
		return screens.ReportIssue(ctx, env, draft)

	case "verify-issue":
		id, err := parseID(args, "fundctl verify-issue <issue-id>")
		if err != nil {
			return err
		}
		return screens.VerifyIssue(ctx, env, id)

	case "forgive-issue":
		if len(args) < 2 {
			return errors.New("usage: fundctl forgive-issue <issue-id> <reason>")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad issue id %q", args[0])
		}
		return screens.ForgiveIssue(ctx, env, id, strings.Join(args[1:], " "))

	case "penalize-issue":
		id, err := parseID(args, "fundctl penalize-issue <issue-id>")
		if err != nil {
			return err
		}
		return screens.PenalizeIssue(ctx, env, id)

	case "profile":
		return screens.Profile(ctx, env)

	case "materials":
		id, err := parseID(args, "fundctl materials <project-id>")
		if err != nil {
			return err
		}
		return screens.Materials(ctx, env, id)

	case "verify-material":
		if len(args) != 2 {
			return errors.New("usage: fundctl verify-material <project-id> <material-id>")
		}
		projectID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad project id %q", args[0])
		}
		materialID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("bad material id %q", args[1])
		}
		return screens.VerifyMaterial(ctx, env, projectID, materialID)

	case "audit":
		return screens.AuditTrail(ctx, env)

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// roleDashboard routes "dashboard" to the screen matching the session's
// role. Anonymous users and auditors land on the public view.
func roleDashboard(ctx context.Context, env *screens.Env) error {
	role, ok := env.Session.Role()
	if !ok {
		return screens.PublicDashboard(ctx, env)
	}
	switch role {
	case workflow.RoleGovernment:
		return screens.GovernmentDashboard(ctx, env)
	case workflow.RoleContractor:
		return screens.ContractorDashboard(ctx, env)
	default:
		return screens.PublicDashboard(ctx, env)
	}
}

func parseID(args []string, usageLine string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("usage: " + usageLine)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad id %q", args[0])
	}
	return id, nil
}

func usage() {
	fmt.Fprint(os.Stderr, `fundctl - public infrastructure fund tracking client

Usage: fundctl [flags] <command> [args]

Session:
  login <username> <password>       sign in
  register <user> <pass> <role>     create an account
  logout                            drop the stored session

Screens:
  projects                          public project list
  project <project-id>              one project with funds and progress
  dashboard                         role-specific dashboard
  issues                            issue management
  profile                           contractor profile and eligibility
  materials <project-id>            project materials
  audit                             backend audit trail (auditor)

Actions:
  approve <progress-id>             accept a pending submission (government)
  reject <progress-id>              decline a pending submission (government)
  submit-progress <project> <p> <f> file a completion report (contractor)
  report-issue <project> <type> <severity> <title> [description]
  verify-issue <issue-id>           confirm a reported issue (government)
  forgive-issue <issue-id> <reason> resolve without penalty (government)
  penalize-issue <issue-id>         apply a rating penalty (government)
  verify-material <project> <id>    mark a material inspected (government)

Flags:
  -config <path>  configuration file (default ~/.fundtracker/config.yaml)
  -v              verbose console logging
`)
}
