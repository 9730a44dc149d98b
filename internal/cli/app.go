// Package cli implements the docrepo command line: one subcommand per user
// flow of the document repository client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"docrepo/internal/config"
	"docrepo/internal/domain"
	"docrepo/internal/logger"
	"docrepo/internal/port"
	"docrepo/internal/service"
)

// StorageFactory opens the archive bucket on demand.
type StorageFactory func(ctx context.Context) (port.ObjectStorage, error)

// Deps are the collaborators of an App.
type Deps struct {
	API     port.DocumentAPI
	Tokens  port.TokenStore
	Storage StorageFactory
	Log     *zap.Logger
	In      io.Reader
	Out     io.Writer
	Err     io.Writer
	Now     func() time.Time
}

// App dispatches subcommands.
type App struct {
	cfg     *config.Config
	api     port.DocumentAPI
	tokens  port.TokenStore
	storage StorageFactory
	log     *zap.Logger
	in      *bufio.Reader
	out     io.Writer
	errOut  io.Writer
	now     func() time.Time

	auth   service.AuthService
	upload service.UploadService
}

// New wires an App.
func New(cfg *config.Config, deps Deps) *App {
	log := logger.OrNop(deps.Log)
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.In == nil {
		deps.In = strings.NewReader("")
	}
	if deps.Err == nil {
		deps.Err = io.Discard
	}
	return &App{
		cfg:     cfg,
		api:     deps.API,
		tokens:  deps.Tokens,
		storage: deps.Storage,
		log:     log,
		in:      bufio.NewReader(deps.In),
		out:     deps.Out,
		errOut:  deps.Err,
		now:     deps.Now,
		auth:    service.NewAuthService(deps.API, deps.Tokens, log),
		upload:  service.NewUploadService(deps.API, log),
	}
}

// ErrUsage reports a malformed command line.
var ErrUsage = errors.New("usage error")

const usage = `Usage: docrepo <command> [flags]

Commands:
  login       sign in and store the session token
  logout      forget the session token
  whoami      show the signed-in user
  register    create an account
  ls          list, search or export documents
  show        show a document and its versions
  download    save a version of a document
  upload      upload a new document
  push        upload a new version of a document
  edit        edit a document's title, description, tags and departments
  archive     copy current versions into the archive bucket
`

// Run executes the subcommand named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.errOut, usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	a.log.Debug("cli.Run", zap.String("command", cmd))
	switch cmd {
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout(ctx, rest)
	case "whoami":
		return a.whoami(ctx, rest)
	case "register":
		return a.register(ctx, rest)
	case "ls", "list":
		return a.list(ctx, rest)
	case "show":
		return a.show(ctx, rest)
	case "download":
		return a.download(ctx, rest)
	case "upload":
		return a.uploadDocument(ctx, rest)
	case "push":
		return a.push(ctx, rest)
	case "edit":
		return a.edit(ctx, rest)
	case "archive":
		return a.archive(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprintf(a.errOut, "unknown command: %s\n\n%s", cmd, usage)
		return ErrUsage
	}
}

// Message is the text to show for a failed command.
func Message(err error) string {
	if errors.Is(err, pflag.ErrHelp) {
		return ""
	}
	return domain.UserMessage(err, err.Error())
}

func (a *App) flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// positional parses fs and checks the positional argument count.
func positional(fs *pflag.FlagSet, args []string, want int, names string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != want {
		return nil, fmt.Errorf("%w: docrepo %s %s", ErrUsage, fs.Name(), names)
	}
	return fs.Args(), nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid document id %q", ErrUsage, s)
	}
	return id, nil
}

// prompt reads one line from the input, used for passwords not given as
// flags.
func (a *App) prompt(label string) (string, error) {
	fmt.Fprint(a.errOut, label)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading %s: %w", strings.TrimSuffix(label, ": "), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
