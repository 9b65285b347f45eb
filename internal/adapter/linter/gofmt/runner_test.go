package gofmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	output := `diff -u internal/foo/bar.go.orig internal/foo/bar.go
--- internal/foo/bar.go.orig	2024-01-01 00:00:00
+++ internal/foo/bar.go	2024-01-01 00:00:00
@@ -10,3 +10,3 @@
 func ok() {
-	x:=1
+	x := 1
 }
@@ -24,1 +24,1 @@
-	y:=2
+	y := 2
`

	findings := parse(output)
	require.Len(t, findings, 2)

	assert.Equal(t, "internal/foo/bar.go", findings[0].File)
	assert.Equal(t, 10, findings[0].LineStart)
	assert.Equal(t, 12, findings[0].LineEnd)
	assert.Equal(t, "internal/foo/bar.go is not gofmt-formatted between lines 10 and 12", findings[0].Message)

	assert.Equal(t, 24, findings[1].LineStart)
	assert.Equal(t, 24, findings[1].LineEnd)
	assert.Equal(t, "internal/foo/bar.go is not gofmt-formatted at line 24", findings[1].Message)
}

func TestParseMultipleFiles(t *testing.T) {
	output := `diff -u a.go.orig a.go
--- a.go.orig	x
+++ a.go	x
@@ -1,1 +1,1 @@
-package  main
+package main
diff -u b.go.orig b.go
--- b.go.orig	x
+++ b.go	x
@@ -5,1 +5,1 @@
-var  z int
+var z int
`

	findings := parse(output)
	require.Len(t, findings, 2)
	assert.Equal(t, "a.go", findings[0].File)
	assert.Equal(t, "b.go", findings[1].File)
	assert.Equal(t, ToolName, findings[0].Tool)
}

func TestParseCleanOutput(t *testing.T) {
	assert.Empty(t, parse(""))
	assert.Empty(t, parse("\n"))
}

func TestParseIgnoresHunkWithoutFile(t *testing.T) {
	// Hunk headers before any file header are not attributable.
	output := "@@ -1,1 +1,1 @@\n-a\n+b\n"
	assert.Empty(t, parse(output))
}
