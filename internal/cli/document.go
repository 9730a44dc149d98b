package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"docrepo/internal/browse"
	"docrepo/internal/combobox"
	"docrepo/internal/detail"
	"docrepo/internal/domain"
)

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (a *App) loadDetail(ctx context.Context, rawID string) (*detail.Controller, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	ctrl := detail.NewController(a.api, id, a.log, a.selectorSettings()...)
	if err := ctrl.Load(ctx); err != nil {
		return nil, err
	}
	return ctrl, nil
}

func (a *App) show(ctx context.Context, args []string) error {
	pos, err := positional(a.flags("show"), args, 1, "ID")
	if err != nil {
		return err
	}
	ctrl, err := a.loadDetail(ctx, pos[0])
	if err != nil {
		return err
	}

	doc := ctrl.Document()
	caps := ctrl.Capabilities()
	fmt.Fprintf(a.out, "%s (#%d)\n", doc.Title, doc.ID)
	if doc.Description != "" {
		fmt.Fprintf(a.out, "%s\n", doc.Description)
	}
	fmt.Fprintf(a.out, "Tags:            %s\n", strings.Join(doc.Tags, ", "))
	fmt.Fprintf(a.out, "Current version: v%d\n", doc.CurrentVersionNumber)
	fmt.Fprintf(a.out, "Can upload:      %s\n", yesNo(caps.CanUploadVersion))
	fmt.Fprintf(a.out, "Can edit:        %s\n\n", yesNo(caps.CanEditMetadata))

	latest, hasLatest := ctrl.LatestVersion()
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tUPLOADED BY\tUPLOADED AT\tSIZE\tTYPE")
	for _, v := range ctrl.Versions() {
		marker := ""
		if hasLatest && v.VersionNumber == latest.VersionNumber {
			marker = " (latest)"
		}
		by, at, typ := "", "", ""
		if v.UploadedByName != nil {
			by = *v.UploadedByName
		}
		if v.UploadedAt != nil {
			at = v.UploadedAt.Local().Format("2006-01-02 15:04")
		}
		if v.MimeType != nil {
			typ = *v.MimeType
		}
		fmt.Fprintf(tw, "v%d%s\t%s\t%s\t%s\t%s\n", v.VersionNumber, marker, by, at, browse.HumanizeBytes(v.FileSize), typ)
	}
	return tw.Flush()
}

func (a *App) download(ctx context.Context, args []string) error {
	fs := a.flags("download")
	version := fs.String("version", "latest", "version number or latest")
	dir := fs.String("dir", ".", "directory to save into")
	pos, err := positional(fs, args, 1, "ID [--version N|latest] [--dir DIR]")
	if err != nil {
		return err
	}
	id, err := parseID(pos[0])
	if err != nil {
		return err
	}
	ref, err := domain.ParseVersionRef(*version)
	if err != nil {
		return err
	}

	dl, err := detail.NewController(a.api, id, a.log, a.selectorSettings()...).Download(ctx, ref)
	if err != nil {
		return err
	}
	path, err := saveDownload(*dir, dl)
	if err != nil {
		return err
	}
	size := int64(len(dl.Body))
	fmt.Fprintf(a.out, "Saved %s (%s)\n", path, browse.HumanizeBytes(&size))
	return nil
}

func (a *App) uploadDocument(ctx context.Context, args []string) error {
	fs := a.flags("upload")
	title := fs.String("title", "", "document title")
	description := fs.String("description", "", "optional description")
	tags := fs.StringSlice("tags", nil, "tags, comma-separated or repeated; new tags are created")
	departments := fs.StringSlice("departments", nil, "departments allowed to view, by name or id")
	pos, err := positional(fs, args, 1, "--title TITLE [--description D] [--tags a,b] [--departments HR,IT] FILE")
	if err != nil {
		return err
	}

	doc := domain.NewDocument{Title: *title, Description: *description}
	if doc.File, err = fileFromPath(pos[0]); err != nil {
		return err
	}

	tagSel := combobox.NewTagSelector(combobox.LoadTags(ctx, a.api, a.log), nil, true, nil, a.selectorSettings()...)
	if err := selectTags(tagSel, *tags); err != nil {
		return err
	}
	doc.Tags = tagSel.Selected()

	if len(*departments) > 0 {
		depSel := combobox.NewDepartmentSelector(combobox.LoadDepartments(ctx, a.api, a.log), nil, nil, a.selectorSettings()...)
		if err := selectDepartments(depSel, *departments); err != nil {
			return err
		}
		doc.DepartmentIDs = combobox.DepartmentIDs(depSel.Selected())
	}

	sum, err := a.upload.Upload(ctx, doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded #%d %s (v%d)\n", sum.ID, sum.Title, sum.CurrentVersionNumber)
	return nil
}

func (a *App) push(ctx context.Context, args []string) error {
	pos, err := positional(a.flags("push"), args, 2, "ID FILE")
	if err != nil {
		return err
	}
	ctrl, err := a.loadDetail(ctx, pos[0])
	if err != nil {
		return err
	}
	file, err := fileFromPath(pos[1])
	if err != nil {
		return err
	}

	ctrl.SelectFile(file)
	if err := ctrl.UploadNewVersion(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded v%d of #%d\n", ctrl.Document().CurrentVersionNumber, ctrl.ID())
	return nil
}

func (a *App) edit(ctx context.Context, args []string) error {
	fs := a.flags("edit")
	title := fs.String("title", "", "new title")
	description := fs.String("description", "", "new description")
	addTags := fs.StringSlice("add-tag", nil, "tag to add; new tags are created")
	removeTags := fs.StringSlice("remove-tag", nil, "tag to remove")
	departments := fs.StringSlice("departments", nil, "replace the departments allowed to view, by name or id")
	pos, err := positional(fs, args, 1, "ID [--title T] [--description D] [--add-tag t] [--remove-tag t] [--departments HR,IT]")
	if err != nil {
		return err
	}
	ctrl, err := a.loadDetail(ctx, pos[0])
	if err != nil {
		return err
	}
	ctrl.LoadCatalogs(ctx)

	if fs.Changed("title") {
		ctrl.SetTitle(*title)
	}
	if fs.Changed("description") {
		ctrl.SetDescription(*description)
	}

	tagSel := ctrl.TagSelector()
	for _, t := range *removeTags {
		if !tagSel.Remove(t) {
			fmt.Fprintf(a.errOut, "tag %q is not on this document\n", t)
		}
	}
	if err := selectTags(tagSel, *addTags); err != nil {
		return err
	}

	if fs.Changed("departments") {
		depSel := ctrl.DepartmentSelector()
		for _, d := range depSel.Selected() {
			depSel.Remove(d)
		}
		if err := selectDepartments(depSel, *departments); err != nil {
			return err
		}
	}

	if err := ctrl.SaveMetadata(ctx); err != nil {
		return err
	}
	doc := ctrl.Document()
	fmt.Fprintf(a.out, "Saved #%d %s [%s]\n", doc.ID, doc.Title, strings.Join(doc.Tags, ", "))
	return nil
}
