package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtnsim/internal/contactplan"
	"dtnsim/internal/cpio"
)

func newConvertCmd(t *testing.T, in, out string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "convert", RunE: runCPConvert}
	cmd.Flags().StringP("in", "i", "", "")
	cmd.Flags().StringP("out", "o", "", "")
	require.NoError(t, cmd.Flags().Set("in", in))
	require.NoError(t, cmd.Flags().Set("out", out))
	return cmd
}

func newVerifyCmd(t *testing.T, in string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "verify", RunE: runCPVerify}
	cmd.Flags().StringP("in", "i", "", "")
	require.NoError(t, cmd.Flags().Set("in", in))
	return cmd
}

func writeJSONPlan(t *testing.T, dir string) string {
	t.Helper()
	plan := contactplan.NewPlan()
	plan.AddContact("r1", "r2", 0, 100, 1000, 5, 0.9)

	path := filepath.Join(dir, "plan.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, cpio.WriteJSON(f, plan))
	return path
}

func TestRunCPConvertJSONToCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeJSONPlan(t, dir)
	out := filepath.Join(dir, "plan.csv")

	cmd := newConvertCmd(t, in, out)
	require.NoError(t, cmd.RunE(cmd, nil))

	converted, err := loadContactPlan(out)
	require.NoError(t, err)
	all := converted.All()
	require.Len(t, all, 1)
	assert.Equal(t, "r1", all[0].Src)
	assert.Equal(t, "r2", all[0].Dst)
}

func TestRunCPConvertFailsOnMissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cmd := newConvertCmd(t, filepath.Join(dir, "does-not-exist.json"), filepath.Join(dir, "out.json"))
	assert.Error(t, cmd.RunE(cmd, nil))
}

func TestRunCPVerifyPassesOnCleanPlan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeJSONPlan(t, dir)

	cmd := newVerifyCmd(t, in)
	assert.NoError(t, cmd.RunE(cmd, nil))
}

func TestRunCPVerifyFailsOnInvalidRange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	plan := contactplan.NewPlan()
	plan.AddContact("r1", "r2", 20, 10, 1000, 1, 1.0)

	path := filepath.Join(dir, "bad.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, cpio.WriteJSON(f, plan))
	f.Close()

	cmd := newVerifyCmd(t, path)
	assert.Error(t, cmd.RunE(cmd, nil))
}

func TestLoadContactPlanDispatchesByExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "plan.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("contact_id,source,dest,startTime,endTime,rate\n1,r1,r2,0,100,1000\n"), 0o644))

	plan, err := loadContactPlan(csvPath)
	require.NoError(t, err)
	all := plan.All()
	require.Len(t, all, 1)
	assert.Equal(t, "r1", all[0].Src)
}
