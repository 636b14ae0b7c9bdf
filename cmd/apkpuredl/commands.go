package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ark3us/apkpuredl"
	"github.com/spf13/cobra"
)

var errUsage = errors.New("invalid arguments")

type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	debug      bool
	baseURL    string
	plainHTTP  bool
	appURL     string
	pkg        string
	apkName    string
	version    string
	arch       string
	progress   bool

	cfg    *apkpuredl.Config
	client *apkpuredl.Client
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:   "apkpuredl",
		Short: "Download an app version from apkpure",
		Long: `Lists the versions of an app on apkpure, then downloads the APK of the
requested version for one CPU architecture.`,
		Example: `  apkpuredl --app-url=/facebook/com.facebook.katana/versions --apk-name=facebook.apk --app-version=V267.1.0.46.120
  apkpuredl versions --package=com.facebook.katana
  apkpuredl variants --app-url=/facebook/com.facebook.katana --app-version=V267.1.0.46.120`,
		Args:              cobra.NoArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE:              a.runDownload,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Path to configuration file (default: "+apkpuredl.ConfigEnv+" or ./"+apkpuredl.ConfigFile+")")
	pf.BoolVar(&a.debug, "debug", false, "Enable debug logs")
	pf.StringVar(&a.baseURL, "base-url", "", "Site root (default "+apkpuredl.URL_BASE+")")
	pf.BoolVar(&a.plainHTTP, "plain-http", false, "Fetch pages with a plain HTTP client instead of cloudscraper")
	pf.StringVar(&a.appURL, "app-url", "", "App versions page, e.g. /facebook/com.facebook.katana/versions")
	pf.StringVar(&a.pkg, "package", "", "Package name to search for when --app-url is not given")

	f := root.Flags()
	f.StringVar(&a.apkName, "apk-name", "", "File to save the APK to, e.g. facebook.apk")
	f.StringVar(&a.version, "app-version", "", "Version to download, e.g. V267.1.0.46.120")
	f.StringVar(&a.arch, "arch", "", "Architecture to download (default "+apkpuredl.DEFAULT_ARCH+")")
	f.BoolVar(&a.progress, "progress", false, "Show a progress bar while downloading")

	root.AddCommand(a.versionsCmd(), a.variantsCmd())
	return root
}

func (a *app) versionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List the versions of an app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := a.listVersions(cmd.Context())
			if err != nil {
				return err
			}
			for _, label := range index.Order {
				fmt.Fprintln(a.stdout, a.client.FormatVersion(index, label))
			}
			return nil
		},
	}
}

func (a *app) variantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "variants",
		Short: "List the architecture variants of one version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := a.listVersions(cmd.Context())
			if err != nil {
				return err
			}
			variants, err := a.client.Variants(cmd.Context(), index, a.version)
			if err != nil {
				return err
			}
			for i, v := range variants {
				fmt.Fprintf(a.stdout, "%3d | arch=%-12s | %s\n | downloadUrl=%s\n",
					i, v.Architecture, strings.Join(v.Cells, " | "), v.DownloadPage)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&a.version, "app-version", "", "Version to inspect")
	return cmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := apkpuredl.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug = a.debug
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = a.baseURL
	}
	if flags.Changed("plain-http") {
		cfg.PlainHTTP = a.plainHTTP
	}
	if flags.Changed("arch") {
		cfg.Arch = a.arch
	}
	if flags.Changed("progress") {
		cfg.Progress = a.progress
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	client, err := apkpuredl.NewClient(cfg.Options(a.stderr)...)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.client = client
	return nil
}

func (a *app) appPath(ctx context.Context) (string, error) {
	switch {
	case a.appURL != "":
		return a.appURL, nil
	case a.pkg != "":
		return a.client.FindAppPath(ctx, a.pkg)
	default:
		return "", fmt.Errorf("%w: one of --app-url or --package is required", errUsage)
	}
}

func (a *app) listVersions(ctx context.Context) (*apkpuredl.VersionIndex, error) {
	appPath, err := a.appPath(ctx)
	if err != nil {
		return nil, err
	}
	return a.client.ListVersions(ctx, appPath)
}

func (a *app) runDownload(cmd *cobra.Command, args []string) error {
	if a.apkName == "" {
		return fmt.Errorf("%w: --apk-name is required", errUsage)
	}
	ctx := cmd.Context()
	index, err := a.listVersions(ctx)
	if err != nil {
		return err
	}
	a.client.LogVersions(index)

	target, err := a.client.Resolve(ctx, index, a.version, a.cfg.Arch, a.apkName)
	if err != nil {
		return err
	}
	if err := a.client.Fetch(ctx, target); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s (%s) saved to %s, %d bytes\n", target.Version, target.Arch, target.Dest, target.Size)
	return nil
}
