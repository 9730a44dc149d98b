package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"docrepo/internal/browse"
	"docrepo/internal/combobox"
	"docrepo/internal/domain"
	"docrepo/internal/export"
	"docrepo/internal/service"
	"docrepo/internal/versions"
)

// Output formats of ls.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatXLSX  = "xlsx"
)

type listOptions struct {
	mine        bool
	title       string
	description string
	tags        []string
	version     string
}

func (o listOptions) searching() bool {
	return o.title != "" || o.description != "" || len(o.tags) > 0 || o.version != ""
}

// loadPage fetches the list selected by opts and annotates it with sizes.
func (a *App) loadPage(ctx context.Context, opts listOptions) (*browse.Page, error) {
	page := browse.NewPage(a.api, versions.NewCatalog(a.api, a.cfg.Lookup.Concurrency, a.log), a.log)

	var err error
	switch {
	case opts.mine:
		err = page.LoadMine(ctx)
	case opts.searching():
		form := browse.NewSearchForm(combobox.LoadTags(ctx, a.api, a.log), a.selectorSettings()...)
		form.Title = opts.title
		form.Description = opts.description
		form.Version = opts.version
		if err := selectTags(form.Tags(), opts.tags); err != nil {
			return nil, err
		}
		filters, ferr := form.Filters()
		if ferr != nil {
			return nil, ferr
		}
		err = page.Search(ctx, filters)
	default:
		err = page.Load(ctx)
	}
	if err != nil {
		return nil, err
	}
	page.RefreshSizes(ctx)
	return page, nil
}

func (a *App) list(ctx context.Context, args []string) error {
	fs := a.flags("ls")
	var opts listOptions
	fs.BoolVar(&opts.mine, "mine", false, "only documents you own")
	fs.StringVar(&opts.title, "title", "", "title contains")
	fs.StringVar(&opts.description, "description", "", "description contains")
	fs.StringSliceVar(&opts.tags, "tags", nil, "catalog tags, comma-separated or repeated")
	fs.StringVar(&opts.version, "version", "", "current version number")
	format := fs.String("format", FormatTable, "table, csv or xlsx")
	outPath := fs.String("out", "", "write to this file instead of stdout")
	if _, err := positional(fs, args, 0, "[--mine] [--title T] [--description D] [--tags a,b] [--version N] [--format F] [--out FILE]"); err != nil {
		return err
	}
	if opts.mine && opts.searching() {
		return fmt.Errorf("%w: --mine cannot be combined with search filters", ErrUsage)
	}
	switch *format {
	case FormatTable, FormatCSV, FormatXLSX:
	default:
		return fmt.Errorf("%w: unknown format %q", ErrUsage, *format)
	}

	page, err := a.loadPage(ctx, opts)
	if err != nil {
		return err
	}
	defer page.Close()
	rows := page.Rows()

	out := a.out
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", *outPath, err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	switch *format {
	case FormatCSV:
		return export.WriteCSV(out, rows)
	case FormatXLSX:
		return export.WriteXLSX(out, rows)
	default:
		return writeTable(out, rows)
	}
}

func writeTable(out io.Writer, rows []browse.Row) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, "No documents found")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tVERSION\tTAGS\tSIZE\tUPDATED")
	for _, r := range rows {
		updated := ""
		if r.Doc.UpdatedAt != nil {
			updated = r.Doc.UpdatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%d\t%s\tv%d\t%s\t%s\t%s\n",
			r.Doc.ID, r.Doc.Title, r.Doc.CurrentVersionNumber, strings.Join(r.Doc.Tags, ", "), r.SizeText(), updated)
	}
	return tw.Flush()
}

func (a *App) archive(ctx context.Context, args []string) error {
	fs := a.flags("archive")
	var opts listOptions
	fs.BoolVar(&opts.mine, "mine", false, "only documents you own")
	if _, err := positional(fs, args, 0, "[--mine]"); err != nil {
		return err
	}
	if a.cfg.Archive.Bucket == "" {
		return errors.New("archive bucket is not configured; set DOCREPO_ARCHIVE_BUCKET")
	}
	if a.storage == nil {
		return errors.New("archive storage is unavailable")
	}
	storage, err := a.storage(ctx)
	if err != nil {
		return err
	}

	page, err := a.loadPage(ctx, opts)
	if err != nil {
		return err
	}
	defer page.Close()

	results := service.NewArchiveService(a.api, storage, a.cfg.Archive, a.log).Archive(ctx, page.Docs())
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(a.out, "FAIL  %d v%d: %s\n", r.DocumentID, r.Version, domain.UserMessage(r.Err, r.Err.Error()))
			continue
		}
		fmt.Fprintf(a.out, "ok    %d v%d -> s3://%s/%s\n", r.DocumentID, r.Version, a.cfg.Archive.Bucket, r.Key)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed to archive", failed, len(results))
	}
	return nil
}
