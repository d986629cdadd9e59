package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rangeServer serves content honoring "Range: bytes=N-" and cuts each
// response after chunk bytes.
func rangeServer(t *testing.T, content string, chunk int) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			offset := 0
			r := bufio.NewReader(conn)
			for {
				line, err := r.ReadString('\n')
				if err != nil || line == "\n" {
					break
				}
				if v, ok := strings.CutPrefix(strings.TrimSpace(line), "Range: bytes="); ok {
					offset, _ = strconv.Atoi(strings.TrimSuffix(v, "-"))
				}
			}
			remaining := content[offset:]
			body := remaining
			if len(body) > chunk {
				body = body[:chunk]
			}
			fmt.Fprintf(conn, "HTTP/1.1 206 Partial Content\nContent-Length: %d\n\n", len(remaining))
			io.WriteString(conn, body)
			conn.Close()
		}
	}()
	t.Cleanup(func() {
		listener.Close()
		wg.Wait()
	})

	return "http://" + listener.Addr().String() + "/file"
}

func TestRun_DownloadToFile(t *testing.T) {
	content := strings.Repeat("abc", 50)
	url := rangeServer(t, content, 40)
	out := filepath.Join(t.TempDir(), "result.txt")

	var stderr bytes.Buffer
	code := run([]string{"-url", url, "-output", out}, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestRun_DownloadToBucket(t *testing.T) {
	url := rangeServer(t, "bucket payload", 4)
	dir := t.TempDir()

	var stderr bytes.Buffer
	code := run([]string{"-url", url, "-bucket", "file://" + filepath.ToSlash(dir), "-object", "payload.txt"}, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	got, err := os.ReadFile(filepath.Join(dir, "payload.txt"))
	require.NoError(t, err)
	assert.Equal(t, "bucket payload", string(got))
}

func TestRun_MaxAttemptsExceeded(t *testing.T) {
	url := rangeServer(t, "0123456789", 2)
	out := filepath.Join(t.TempDir(), "result.txt")

	var stderr bytes.Buffer
	code := run([]string{"-url", url, "-output", out, "-max-attempts", "2"}, &stderr)
	assert.Equal(t, ExitRequestFailed, code)

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err), "nothing is stored for an unfinished download")
}

func TestRun_InvalidArgs(t *testing.T) {
	testcases := []struct {
		desc string
		args []string
	}{
		{"https url", []string{"-url", "https://example.com"}},
		{"unknown flag", []string{"-nope"}},
		{"bucket without object", []string{"-bucket", "mem://"}},
		{"unknown transport", []string{"-transport", "quic"}},
		{"socket path without unix", []string{"-socket-path", "/tmp/origin.sock"}},
		{"missing config file", []string{"-config", "/does/not/exist.yaml"}},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			var stderr bytes.Buffer
			assert.Equal(t, ExitInvalidArgs, run(tc.args, &stderr))
		})
	}
}

func TestRun_Help(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, ExitSuccess, run([]string{"-h"}, &stderr))
	assert.Contains(t, stderr.String(), "Usage: httpresume")
}

func TestRun_ConnectionRefused(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	url := "http://" + listener.Addr().String() + "/"
	listener.Close()

	var stderr bytes.Buffer
	assert.Equal(t, ExitRequestFailed, run([]string{"-url", url, "-output", filepath.Join(t.TempDir(), "x")}, &stderr))
}
