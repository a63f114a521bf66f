// Package service generates and manages a systemd user unit/timer pair
// that periodically invokes `tidemark mark`, grounded on the original
// service-planning module this project was distilled from. All of its
// state lives under the user's systemd directory, never inside the repo.
package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/frgrisk/tidemark/internal/tideerr"
)

// Plan is a fully-rendered, not-yet-written unit/timer pair.
type Plan struct {
	UnitName       string
	ServiceFile    string
	TimerFile      string
	ServiceContent string
	TimerContent   string
}

// InstallRequest configures a scheduled tidemark invocation.
type InstallRequest struct {
	RepoRoot        string
	IntervalMinutes uint32
	UnitName        string // empty means derive one from RepoRoot
	LocalOnly       bool
	Explain         bool
	MetadataSuffix  string
}

// UninstallRequest identifies which unit to remove.
type UninstallRequest struct {
	RepoRoot string
	UnitName string
}

// currentExecutable is overridable in tests; defaults to os.Executable.
var currentExecutable = os.Executable

// PlanService renders a service/timer pair without touching the filesystem
// or systemctl, for previewing before InstallUserService.
func PlanService(req InstallRequest) (Plan, error) {
	if req.IntervalMinutes == 0 {
		return Plan{}, tideerr.InvalidServiceInterval(req.IntervalMinutes)
	}

	unitName := sanitizeUnitName(req.UnitName)
	if unitName == "" {
		unitName = defaultUnitName(req.RepoRoot)
	}

	systemdDir, err := userSystemdDir()
	if err != nil {
		return Plan{}, err
	}
	serviceFile := filepath.Join(systemdDir, unitName+".service")
	timerFile := filepath.Join(systemdDir, unitName+".timer")

	exe, err := currentExecutable()
	if err != nil {
		return Plan{}, tideerr.IO("current_exe", err)
	}

	args := scheduledMarkArgs(req.LocalOnly, req.Explain, req.MetadataSuffix)
	serviceContent := renderServiceUnit(unitName, req.RepoRoot, exe, args)
	timerContent := renderTimerUnit(unitName, req.IntervalMinutes)

	return Plan{
		UnitName:       unitName,
		ServiceFile:    serviceFile,
		TimerFile:      timerFile,
		ServiceContent: serviceContent,
		TimerContent:   timerContent,
	}, nil
}

// InstallUserService writes the unit/timer pair and enables it.
func InstallUserService(req InstallRequest) (Plan, error) {
	if err := ensureLinux("service install"); err != nil {
		return Plan{}, err
	}

	plan, err := PlanService(req)
	if err != nil {
		return Plan{}, err
	}

	unitDir := filepath.Dir(plan.ServiceFile)
	if err := os.MkdirAll(unitDir, 0o755); err != nil {
		return Plan{}, tideerr.IO(unitDir, err)
	}
	if err := os.WriteFile(plan.ServiceFile, []byte(plan.ServiceContent), 0o644); err != nil {
		return Plan{}, tideerr.IO(plan.ServiceFile, err)
	}
	if err := os.WriteFile(plan.TimerFile, []byte(plan.TimerContent), 0o644); err != nil {
		return Plan{}, tideerr.IO(plan.TimerFile, err)
	}

	if err := runSystemctlChecked("--user", "daemon-reload"); err != nil {
		return Plan{}, err
	}
	if err := runSystemctlChecked("--user", "enable", "--now", plan.UnitName+".timer"); err != nil {
		return Plan{}, err
	}

	return plan, nil
}

// UninstallUserService disables and removes a previously installed unit.
func UninstallUserService(req UninstallRequest) (Plan, error) {
	if err := ensureLinux("service uninstall"); err != nil {
		return Plan{}, err
	}

	plan, err := PlanService(InstallRequest{
		RepoRoot:        req.RepoRoot,
		IntervalMinutes: 60,
		UnitName:        req.UnitName,
		LocalOnly:       true,
		Explain:         true,
	})
	if err != nil {
		return Plan{}, err
	}

	_ = runSystemctlBestEffort("--user", "disable", "--now", plan.UnitName+".timer")

	if _, err := os.Stat(plan.ServiceFile); err == nil {
		if err := os.Remove(plan.ServiceFile); err != nil {
			return Plan{}, tideerr.IO(plan.ServiceFile, err)
		}
	}
	if _, err := os.Stat(plan.TimerFile); err == nil {
		if err := os.Remove(plan.TimerFile); err != nil {
			return Plan{}, tideerr.IO(plan.TimerFile, err)
		}
	}

	if err := runSystemctlChecked("--user", "daemon-reload"); err != nil {
		return Plan{}, err
	}

	return plan, nil
}

// defaultUnitName derives a stable, human-identifiable unit name from the
// repo root's basename plus a truncated SHA-256 of the full path, so two
// differently-located repos with the same directory name never collide.
func defaultUnitName(repoRoot string) string {
	name := sanitizeUnitName(filepath.Base(repoRoot))
	if name == "" {
		name = "repo"
	}

	sum := sha256.Sum256([]byte(repoRoot))
	short := hex.EncodeToString(sum[:])[:12]

	return fmt.Sprintf("tidemark-%s-%s", name, short)
}

func scheduledMarkArgs(localOnly, explain bool, metadataSuffix string) []string {
	args := []string{"mark"}
	if explain {
		args = append(args, "--explain")
	}
	if localOnly {
		args = append(args, "--local-only")
	}
	if tag := strings.TrimSpace(metadataSuffix); tag != "" {
		args = append(args, "--tag", tag)
	}
	return args
}

func renderServiceUnit(unitName, repoRoot, binary string, execArgs []string) string {
	parts := make([]string, 0, len(execArgs)+1)
	parts = append(parts, systemdQuote(binary))
	for _, arg := range execArgs {
		parts = append(parts, systemdQuote(arg))
	}
	execStart := strings.Join(parts, " ")

	return fmt.Sprintf(
		"[Unit]\nDescription=TideMark scheduled resolver (%s)\nAfter=network-online.target\n\n[Service]\nType=oneshot\nWorkingDirectory=%s\nExecStart=%s\nStandardOutput=journal\nStandardError=journal\n\n",
		unitName, systemdQuote(repoRoot), execStart,
	)
}

func renderTimerUnit(unitName string, intervalMinutes uint32) string {
	return fmt.Sprintf(
		"[Unit]\nDescription=TideMark schedule (%s)\n\n[Timer]\nOnBootSec=2min\nOnUnitActiveSec=%dmin\nAccuracySec=1s\nPersistent=true\nUnit=%s.service\n\n[Install]\nWantedBy=timers.target\n",
		unitName, intervalMinutes, unitName,
	)
}

func sanitizeUnitName(raw string) string {
	lowered := cases.Lower(language.Und).String(raw)

	var b strings.Builder
	for _, ch := range lowered {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
			b.WriteRune(ch)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

func systemdQuote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

func userSystemdDir() (string, error) {
	home, ok := os.LookupEnv("HOME")
	if !ok || home == "" {
		return "", tideerr.MissingHomeDirectory()
	}
	return filepath.Join(home, ".config", "systemd", "user"), nil
}

func ensureLinux(feature string) error {
	if runtime.GOOS == "linux" {
		return nil
	}
	return tideerr.UnsupportedPlatform(feature)
}

func runSystemctlChecked(args ...string) error {
	out, err := exec.Command("systemctl", args...).CombinedOutput()
	if err == nil {
		return nil
	}
	return tideerr.SystemCommand("systemctl", fmt.Errorf("%s: %w", strings.TrimSpace(string(out)), err))
}

func runSystemctlBestEffort(args ...string) error {
	out, err := exec.Command("systemctl", args...).CombinedOutput()
	if err == nil {
		return nil
	}
	stderr := strings.ToLower(string(out))
	if strings.Contains(stderr, "not loaded") || strings.Contains(stderr, "not found") {
		return nil
	}
	return tideerr.SystemCommand("systemctl", fmt.Errorf("%s: %w", strings.TrimSpace(string(out)), err))
}
