package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/awesome-taskwarrior/tw/internal/meta"
	"github.com/awesome-taskwarrior/tw/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	newDir         string
	newOut         string
	newVersion     string
	newType        string
	newDescription string
	newRepo        string
	newBranch      string
	newAuthor      string
	newLicense     string
	newTags        []string
	newRequires    []string
	newFiles       []string
)

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Generate the metadata file for a package",
	Long: `Generate <name>.meta for the project in --dir.

Files are detected from the project unless given with --file name:role:
on-add/on-modify/on-exit/on-launch hooks, executable scripts, *.rc and
*.conf configs, and README.md, USAGE.md and INSTALL.md docs. Checksums are
computed from the project files. An existing <name>.meta is never
overwritten. The installer is not generated; write installers/<name>.install
by hand.`,
	Example: `  tw new tw-priority --repo someone/tw-priority --tags hook,python
  tw new tw-priority --file on-add_priority.py:hook --file priority.rc:config`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func init() {
	f := newCmd.Flags()
	f.StringVar(&newDir, "dir", ".", "Project directory holding the package files")
	f.StringVarP(&newOut, "out", "o", "", "Output directory (default: --dir)")
	f.StringVar(&newVersion, "version", "0.1.0", "Package version")
	f.StringVar(&newType, "type", "hook", "Package type")
	f.StringVarP(&newDescription, "description", "d", "", "One-line description")
	f.StringVar(&newRepo, "repo", "", "GitHub repository as owner/name")
	f.StringVar(&newBranch, "branch", "main", "Branch the installer downloads files from")
	f.StringVar(&newAuthor, "author", "", "Package author")
	f.StringVar(&newLicense, "license", "MIT", "Package license")
	f.StringSliceVar(&newTags, "tags", nil, "Comma-separated tags")
	f.StringSliceVar(&newRequires, "requires", nil, "Comma-separated requirements")
	f.StringArrayVar(&newFiles, "file", nil, "Declared file as name:role (repeatable)")
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	data := scaffold.NewData(args[0])
	data.Version = newVersion
	data.Type = newType
	data.Description = newDescription
	data.Repo = strings.TrimSuffix(strings.TrimPrefix(newRepo, "https://github.com/"), ".git")
	data.Branch = newBranch
	data.Author = newAuthor
	data.License = newLicense
	data.Tags = newTags
	data.Requires = newRequires

	if len(newFiles) > 0 {
		files, err := parseFileFlags(newFiles)
		if err != nil {
			return err
		}
		data.Files = files
	} else {
		files, err := scaffold.DetectFiles(newDir)
		if err != nil {
			return err
		}
		data.Files = files
	}

	sums, err := scaffold.Checksums(newDir, data.Files)
	if err != nil {
		return fmt.Errorf("computing checksums: %w", err)
	}
	data.Checksums = sums

	outDir := newOut
	if outDir == "" {
		outDir = newDir
	}
	current.logger.Debug("generating package files")
	result, err := scaffold.Generate(data, outDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(data.Files) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: no package files detected; edit files= by hand")
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	for _, f := range result.Files {
		fmt.Fprintf(out, "  create %s\n", filepath.Join(result.OutputDir, f))
	}
	fmt.Fprintf(out, "Generated %s v%s (%d files declared)\n", data.Name, data.Version, len(data.Files))
	return nil
}

func parseFileFlags(values []string) ([]meta.FileSpec, error) {
	files := make([]meta.FileSpec, 0, len(values))
	for _, v := range values {
		name, role, ok := strings.Cut(v, ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --file %q: want name:role", v)
		}
		r := meta.Role(strings.ToLower(role))
		if !r.Known() {
			return nil, fmt.Errorf("invalid --file %q: unknown role %q", v, role)
		}
		files = append(files, meta.FileSpec{Name: name, Role: r})
	}
	return files, nil
}
