package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// runTest 清 testcache 後跑全部測試，只印 ok/FAIL 摘要行。
func runTest() {
	PrintGreen("running tests")

	cleanCmd := exec.Command("go", "clean", "-testcache")
	if err := cleanCmd.Run(); err != nil {
		PrintRed(err.Error())
	}

	cmd := exec.Command("go", "test", "./...", "-cover", "-count=1")

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		panic(err)
	}
	// 編譯錯誤走 stderr，也導進同一個 pipe
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		PrintRed(fmt.Sprintf("Error starting go test: %v", err))
		os.Exit(1)
	}

	failed := false
	scanner := bufio.NewScanner(stdoutPipe)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "ok"):
			PrintGreen(line)
		case strings.HasPrefix(line, "FAIL"):
			failed = true
			PrintRed(line)
		}
	}
	if err := cmd.Wait(); err != nil || failed {
		os.Exit(1)
	}
}

// runTestDetail 保留完整 go test -v 輸出。
func runTestDetail() {
	PrintGreen("running tests (verbose)")
	cmd := exec.Command("go", "test", "./...", "-v", "-count=1")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		os.Exit(1)
	}
}

// runSmokeSim 用小量局數跑一次示範機台模擬，確認熱路徑沒壞。
func runSmokeSim() {
	PrintGreen("smoke sim: neon_lines 10k rounds")
	cmd := exec.Command("go", "run", "./cmd/sim",
		"-game", "neon_lines", "-rounds", "10000", "-mp", "2", "-seed", "1")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		os.Exit(1)
	}
}
