package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vidprep/config"
	"vidprep/internal/service"
	"vidprep/log"

	"github.com/spf13/cobra"
)

var Version = "dev"

var (
	rootCmd = &cobra.Command{
		Use:   "vidprep",
		Short: "Clip range export and dataset preparation tool",
		Long: `vidprep exports user-defined clip ranges from source videos into
cropped clips, uncropped clips, and still frames, with optional AI captions.

Examples:
  # Export every selected range in a folder's session
  vidprep export -f ./footage

  # Normalize a folder to 16 fps before editing
  vidprep convert-fps -f ./footage --fps 16`,
		PersistentPreRun: func(*cobra.Command, []string) {
			log.InitLogger()
			if !config.LoadConfig() {
				fmt.Fprintln(os.Stderr, "cannot load configuration")
				os.Exit(1)
			}
			if err := config.CheckConfig(); err != nil {
				fmt.Fprintln(os.Stderr, "invalid configuration:", err)
				os.Exit(1)
			}
		},
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Run the folder's planned export batch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			folder, _ := cmd.Flags().GetString("folder")
			if folder == "" {
				return fmt.Errorf("folder is required")
			}

			ctx := signalContext()
			svc := service.NewService()
			if _, _, err := svc.OpenFolder(ctx, folder); err != nil {
				return err
			}

			batchId, jobCount, err := svc.StartExport(folder)
			if err != nil {
				return err
			}
			fmt.Printf("batch %s: %d jobs\n", batchId, jobCount)

			events, off, err := svc.SubscribeBatch(batchId)
			if err != nil {
				return err
			}
			defer off()

			go func() {
				<-ctx.Done()
				_ = svc.CancelExport(batchId)
			}()

			for ev := range events {
				mark := "ok"
				if !ev.Succeeded {
					mark = "FAILED: " + ev.FailReason
				}
				fmt.Printf("[%d/%d] %s %s (%s)\n", ev.Done, ev.Total, ev.OutputPath, mark, ev.Kind)
			}

			status, err := svc.ExportStatus(batchId)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d succeeded, %d failed\n", status.Stage, status.Succeeded, status.Failed)
			if status.Failed > 0 {
				os.Exit(1)
			}
			return nil
		},
	}

	convertFpsCmd = &cobra.Command{
		Use:   "convert-fps",
		Short: "Resample every video in a folder to a target frame rate",
		Long: `Rewrites each video into a subfolder at the target frame rate, keeping
filenames. Existing outputs are skipped, so an interrupted run can resume.
Open a new session on the subfolder afterwards.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			folder, _ := cmd.Flags().GetString("folder")
			subfolder, _ := cmd.Flags().GetString("subfolder")
			fps, _ := cmd.Flags().GetInt("fps")
			if folder == "" {
				return fmt.Errorf("folder is required")
			}

			svc := service.NewService()
			report, err := svc.ConvertFps(signalContext(), folder, subfolder, fps)
			if err != nil {
				return err
			}

			for _, res := range report.Results {
				switch {
				case res.Err != nil:
					fmt.Printf("FAILED %s: %v\n", res.InputPath, res.Err)
				case res.Skipped:
					fmt.Printf("skipped %s (already converted)\n", res.InputPath)
				default:
					fmt.Printf("converted %s\n", res.OutputPath)
				}
			}
			succeeded, failed := report.Counts()
			fmt.Printf("%d succeeded, %d failed, output in %s\n", succeeded, failed, report.OutDir)
			if failed > 0 {
				os.Exit(1)
			}
			return nil
		},
	}

	scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "Open a folder, reconcile its session with the files on disk, and save",
		RunE: func(cmd *cobra.Command, _ []string) error {
			folder, _ := cmd.Flags().GetString("folder")
			if folder == "" {
				return fmt.Errorf("folder is required")
			}

			svc := service.NewService()
			s, report, err := svc.OpenFolder(signalContext(), folder)
			if err != nil {
				return err
			}

			fmt.Printf("%d videos in session\n", len(s.Videos))
			for _, p := range report.Added {
				fmt.Printf("added %s\n", p)
			}
			for old, now := range report.Relinked {
				fmt.Printf("relinked %s -> %s\n", old, now)
			}
			for _, p := range report.Missing {
				fmt.Printf("missing %s\n", p)
			}
			return svc.SaveSession(folder)
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(*cobra.Command, []string) {
			fmt.Println("vidprep", Version)
		},
	}
)

func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()
	return ctx
}

func init() {
	exportCmd.Flags().StringP("folder", "f", "", "working folder with a session file")

	convertFpsCmd.Flags().StringP("folder", "f", "", "source folder")
	convertFpsCmd.Flags().String("subfolder", "", "output subfolder name (default fps_converted)")
	convertFpsCmd.Flags().Int("fps", 16, "target frame rate")

	scanCmd.Flags().StringP("folder", "f", "", "folder to scan")

	rootCmd.AddCommand(exportCmd, convertFpsCmd, scanCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
