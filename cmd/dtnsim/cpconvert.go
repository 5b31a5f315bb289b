package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dtnsim/internal/contactplan"
	"dtnsim/internal/cpio"
)

var cpconvertCmd = &cobra.Command{
	Use:   "cpconvert",
	Short: "Convert and verify contact-plan files",
}

var cpconvertToCmd = &cobra.Command{
	Use:   "convert",
	Args:  cobra.NoArgs,
	Short: "Convert a contact plan between the JSON and CSV formats",
	RunE:  runCPConvert,
}

var cpconvertVerifyCmd = &cobra.Command{
	Use:   "verify",
	Args:  cobra.NoArgs,
	Short: "Check a contact plan for duplicate ids and invalid ranges",
	RunE:  runCPVerify,
}

func init() {
	cpconvertCmd.AddCommand(cpconvertToCmd)
	cpconvertCmd.AddCommand(cpconvertVerifyCmd)

	cpconvertToCmd.Flags().StringP("in", "i", "", "input contact plan path")
	cpconvertToCmd.Flags().StringP("out", "o", "", "output contact plan path")
	_ = cpconvertToCmd.MarkFlagRequired("in")
	_ = cpconvertToCmd.MarkFlagRequired("out")

	cpconvertVerifyCmd.Flags().StringP("in", "i", "", "input contact plan path")
	_ = cpconvertVerifyCmd.MarkFlagRequired("in")
}

func runCPConvert(cmd *cobra.Command, args []string) error {
	inPath, _ := cmd.Flags().GetString("in")
	outPath, _ := cmd.Flags().GetString("out")

	plan, err := loadContactPlan(inPath)
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %q: %w", outPath, err)
	}
	defer f.Close()

	if strings.HasSuffix(strings.ToLower(outPath), ".csv") {
		return cpio.WriteCSV(f, plan)
	}
	return cpio.WriteJSON(f, plan)
}

func runCPVerify(cmd *cobra.Command, args []string) error {
	inPath, _ := cmd.Flags().GetString("in")

	plan, err := loadContactPlan(inPath)
	if err != nil {
		return err
	}

	result := cpio.Verify(plan)
	if result.OK() {
		fmt.Println("OK: no duplicate ids or invalid ranges")
		return nil
	}

	if len(result.DuplicateIDs) > 0 {
		fmt.Printf("duplicate contact ids: %v\n", result.DuplicateIDs)
	}
	if len(result.InvalidRange) > 0 {
		fmt.Printf("invalid (start > end) ranges: %v\n", result.InvalidRange)
	}
	return fmt.Errorf("contact plan %q failed verification", inPath)
}

func loadContactPlan(path string) (*contactplan.Plan, error) {
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		return cpio.ReadCSVFile(path)
	}
	return cpio.ReadJSONFile(path)
}
