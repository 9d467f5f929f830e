package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTestData(t *testing.T) {
	t.Helper()
	dataDir = "../../internal/adapters/csvsource/testdata"
	seed = 5
	atFlag = "EOD"
	t.Cleanup(func() { dataDir, seed, atFlag = "", 0, "EOD" })
}

func TestPrintRun(t *testing.T) {
	useTestData(t)

	run, err := dispatch(context.Background())
	require.NoError(t, err)
	at, err := reportTime()
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printRun(&out, run, at))
	assert.Contains(t, out.String(), "seed 5")
	assert.Contains(t, out.String(), "truck 1 (")
	assert.Contains(t, out.String(), "Delivered")
	assert.NotContains(t, out.String(), "At Hub")
}

func TestPrintTrucksAndPackage(t *testing.T) {
	useTestData(t)

	run, err := dispatch(context.Background())
	require.NoError(t, err)
	at, err := reportTime()
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printTrucks(&out, run.Reporter.Trucks(at)))
	assert.Contains(t, out.String(), "total miles")

	detail, err := run.Reporter.Package(2, at)
	require.NoError(t, err)
	out.Reset()
	printPackage(&out, detail)
	assert.Contains(t, out.String(), "package 2")
	assert.Contains(t, out.String(), "Can only be on truck 2")
	assert.Contains(t, out.String(), "truck:     2")
}

func TestReportTimeRejectsGarbage(t *testing.T) {
	atFlag = "whenever"
	t.Cleanup(func() { atFlag = "EOD" })

	_, err := reportTime()
	require.Error(t, err)
}
