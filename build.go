//go:build ignore

// build.go - sector dashboard build script
// Usage: go run build.go [-target=TARGET] [-v] [-goos=OS -goarch=ARCH]
// Targets: all, web, sectorcheck, test, clean, package

package main

import (
	"archive/zip"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	module      = "bvmtdash"
	versionPkg  = module + "/pkg/contracts"
	distDirName = "dist"
)

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	Version string
	GOOS    string
	GOARCH  string
}

var (
	rootDir string
	distDir string

	// key = directory under cmd/, value = output binary name
	executables = map[string]string{
		"web":         "bvmtdash",
		"sectorcheck": "sectorcheck",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	version := flag.String("version", "", "Version stamped into the binaries (defaults to the source version)")
	goos := flag.String("goos", runtime.GOOS, "Target operating system")
	goarch := flag.String("goarch", runtime.GOARCH, "Target architecture")
	flag.Parse()

	cwd, err := os.Getwd()
	if err != nil {
		printError(fmt.Sprintf("Failed to get current directory: %v", err))
		os.Exit(1)
	}
	if _, err := os.Stat(filepath.Join(cwd, "go.mod")); err != nil {
		printError("build.go must be run from the repository root")
		os.Exit(1)
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, distDirName)

	printHeader()
	startTime := time.Now()

	ctx := &BuildContext{
		Verbose: *verbose,
		Version: *version,
		GOOS:    *goos,
		GOARCH:  *goarch,
	}

	switch *target {
	case "all":
		buildAll(ctx)
	case "web", "sectorcheck":
		buildExecutable(*target, ctx)
	case "test":
		runTests(ctx.Verbose)
	case "clean":
		clean()
	case "package":
		buildAll(ctx)
		createPackage(ctx)
	default:
		showHelp()
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "     BVMT Sector Dashboard - Build         " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

func buildAll(ctx *BuildContext) {
	printInfo("Building all executables...")

	if err := os.MkdirAll(distDir, 0o755); err != nil {
		printError(fmt.Sprintf("Failed to create %s: %v", distDir, err))
		os.Exit(1)
	}

	for name := range executables {
		buildExecutable(name, ctx)
	}

	printSuccess("All executables built")
}

// ldflags strips debug info and stamps the version variables of pkg/contracts
func ldflags(ctx *BuildContext) string {
	flags := []string{
		"-s", "-w",
		fmt.Sprintf("-X %s.BuildTime=%s", versionPkg, time.Now().UTC().Format(time.RFC3339)),
	}
	if ctx.Version != "" {
		flags = append(flags, fmt.Sprintf("-X %s.Version=%s", versionPkg, ctx.Version))
	}
	if commit := gitCommit(); commit != "" {
		flags = append(flags, fmt.Sprintf("-X %s.GitCommit=%s", versionPkg, commit))
	}
	return strings.Join(flags, " ")
}

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func binaryName(name string, ctx *BuildContext) string {
	exe := executables[name]
	if ctx.GOOS == "windows" {
		exe += ".exe"
	}
	return exe
}

func buildExecutable(name string, ctx *BuildContext) {
	if _, ok := executables[name]; !ok {
		printError(fmt.Sprintf("Unknown executable: %s", name))
		os.Exit(1)
	}

	printInfo(fmt.Sprintf("Building %s for %s/%s...", name, ctx.GOOS, ctx.GOARCH))

	outputPath := filepath.Join(distDir, binaryName(name, ctx))
	args := []string{"build", "-trimpath", "-ldflags", ldflags(ctx), "-o", outputPath, "./cmd/" + name}
	if ctx.Verbose {
		args = append([]string{"build", "-v"}, args[1:]...)
	}

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Env = append(os.Environ(), "GOOS="+ctx.GOOS, "GOARCH="+ctx.GOARCH, "CGO_ENABLED=0")
	cmd.Stderr = os.Stderr
	if ctx.Verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", filepath.Base(outputPath), float64(info.Size())/1024/1024))
	}
}

func runTests(verbose bool) {
	printInfo("Running Go tests...")

	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}

	printSuccess("All tests passed")
}

func clean() {
	printInfo("Cleaning build artifacts...")

	if err := os.RemoveAll(distDir); err != nil {
		printError(fmt.Sprintf("Failed to clean %s: %v", distDir, err))
		return
	}
	if err := os.RemoveAll(filepath.Join(rootDir, "logs")); err != nil {
		printWarning(fmt.Sprintf("Failed to clear logs: %v", err))
	}

	printSuccess("Build artifacts cleaned")
}

// createPackage zips the binaries with the sample configuration
func createPackage(ctx *BuildContext) {
	name := fmt.Sprintf("%s-%s-%s.zip", module, ctx.GOOS, ctx.GOARCH)
	printInfo(fmt.Sprintf("Creating %s...", name))

	out, err := os.Create(filepath.Join(distDir, name))
	if err != nil {
		printError(fmt.Sprintf("Failed to create package: %v", err))
		os.Exit(1)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	var files []string
	for exe := range executables {
		files = append(files, filepath.Join(distDir, binaryName(exe, ctx)))
	}
	for _, extra := range []string{"configs/config.yaml", "configs/labels.yaml"} {
		if _, err := os.Stat(filepath.Join(rootDir, extra)); err == nil {
			files = append(files, filepath.Join(rootDir, extra))
		}
	}

	for _, path := range files {
		if err := addToZip(zw, path, filepath.Base(path)); err != nil {
			printError(fmt.Sprintf("Failed to add %s: %v", path, err))
			os.Exit(1)
		}
	}
	if err := zw.Close(); err != nil {
		printError(fmt.Sprintf("Failed to finish package: %v", err))
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Package written to %s", filepath.Join(distDirName, name)))
}

func addToZip(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	return err
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v] [-version=X.Y.Z] [-goos=OS] [-goarch=ARCH]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all           Build the dashboard server and sectorcheck (default)")
	fmt.Println("  web           Build the dashboard server only")
	fmt.Println("  sectorcheck   Build the data checking CLI only")
	fmt.Println("  test          Run all Go tests with the race detector")
	fmt.Println("  clean         Remove dist/ and logs/")
	fmt.Println("  package       Build all and zip the binaries with configs/")
}
