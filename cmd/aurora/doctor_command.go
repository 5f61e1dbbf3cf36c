package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"aurora/internal/config"
	"aurora/internal/deps"
	"aurora/internal/logging"
	"aurora/internal/preflight"
	"aurora/internal/telegram"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check binaries, directories and remote APIs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			lines, failed := doctorReport(cmd.Context(), cfg, offline, colorize)
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip Telegram and LLM network checks")
	return cmd
}

func doctorReport(ctx context.Context, cfg *config.Config, offline, colorize bool) ([]string, int) {
	failed := 0
	lines := renderSectionHeader("Dependencies", colorize)
	statuses := preflight.CheckSystemDeps(ctx, cfg)
	for _, dep := range statuses {
		if dep.Available {
			detail := dep.Path
			if dep.Version != "" {
				detail = fmt.Sprintf("%s (%s)", dep.Version, dep.Path)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, detail, colorize))
			continue
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		} else {
			failed++
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, dep.Detail, colorize))
	}
	if missing := deps.Missing(statuses); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, m := range missing {
			names = append(names, m.Command)
		}
		lines = append(lines, renderStatusLine("Missing", statusWarn, strings.Join(names, ", "), colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Storage", colorize)...)
	for _, result := range preflight.RunAll(cfg) {
		kind := statusOK
		if !result.Passed {
			kind = statusError
			failed++
		}
		lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
	}
	if warning := cfg.PDFFontWarning(); warning != "" {
		lines = append(lines, renderStatusLine("PDF font", statusWarn, warning, colorize))
	} else {
		lines = append(lines, renderStatusLine("PDF font", statusOK, fontLabel(cfg.Render.PDFFontPath), colorize))
	}
	admins := len(cfg.Telegram.AdminIDs)
	lines = append(lines, renderStatusLine("Admins", statusInfo, fmt.Sprintf("%d configured, export enabled: %s", admins, yesNo(admins > 0)), colorize))

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Remote", colorize)...)
	if offline {
		lines = append(lines, renderStatusLine("Telegram", statusInfo, "skipped (offline)", colorize))
		lines = append(lines, renderStatusLine("Chat LLM", statusInfo, "skipped (offline)", colorize))
		return lines, failed
	}

	if cfg.Telegram.Token == "" {
		lines = append(lines, renderStatusLine("Telegram", statusError, "bot token missing", colorize))
		failed++
	} else {
		client, err := telegram.NewClient(cfg.Telegram.BaseURL, cfg.Telegram.Token, logging.NewNop())
		if err != nil {
			lines = append(lines, renderStatusLine("Telegram", statusError, err.Error(), colorize))
			failed++
		} else {
			result := preflight.CheckTelegram(ctx, client)
			kind := statusOK
			if !result.Passed {
				kind = statusError
				failed++
			}
			lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
		}
	}

	llmCfg := cfg.GetLLM()
	if llmCfg.APIKey == "" {
		lines = append(lines, renderStatusLine("Chat LLM", statusWarn, "API key missing (chat echoes messages)", colorize))
	} else {
		result := preflight.CheckLLM(ctx, "Chat LLM", llmCfg)
		kind := statusOK
		if !result.Passed {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
	}
	return lines, failed
}

func fontLabel(path string) string {
	if path == "" {
		return "core Helvetica"
	}
	return path
}
