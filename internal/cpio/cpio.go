// Package cpio implements the contact-plan file formats: a JSON document
// keyed "contacts", and an equivalent CSV, plus a verification pass for
// the cpconvert CLI subcommand.
package cpio

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"dtnsim/internal/contactplan"
)

// jsonContact mirrors one entry of the JSON format's "contacts" list.
type jsonContact struct {
	Contact    int     `json:"contact"`
	Source     string  `json:"source"`
	Dest       string  `json:"dest"`
	StartTime  int64   `json:"startTime"`
	EndTime    int64   `json:"endTime"`
	Rate       int64   `json:"rate"`
	OWLT       int64   `json:"owlt"`
	Confidence float64 `json:"confidence"`
}

type jsonDocument struct {
	Contacts []jsonContact `json:"contacts"`
}

// ReadJSON loads a contact plan from the JSON format. The "contact" ids in
// the file are not kept: every contact is added through Plan.AddContact
// and gets a fresh id from the plan.
func ReadJSON(r io.Reader) (*contactplan.Plan, error) {
	var doc jsonDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding contact plan json")
	}
	plan := contactplan.NewPlan()
	for _, c := range doc.Contacts {
		plan.AddContact(c.Source, c.Dest, c.StartTime, c.EndTime, c.Rate, c.OWLT, c.Confidence)
	}
	return plan, nil
}

// WriteJSON serializes plan in the JSON format.
func WriteJSON(w io.Writer, plan *contactplan.Plan) error {
	doc := jsonDocument{}
	for _, c := range plan.All() {
		doc.Contacts = append(doc.Contacts, jsonContact{
			Contact:    c.ID,
			Source:     c.Src,
			Dest:       c.Dst,
			StartTime:  c.Start,
			EndTime:    c.End,
			Rate:       c.Rate,
			OWLT:       c.OWLT,
			Confidence: c.Confidence,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(doc), "encoding contact plan json")
}

var csvHeader = []string{"contact_id", "source", "dest", "startTime", "endTime", "rate"}

// ReadCSV loads a contact plan from the CSV format: header
// "contact_id,source,dest,startTime,endTime,rate". OWLT and confidence are
// not carried by this format and default to 0 and 1.0 respectively.
func ReadCSV(r io.Reader) (*contactplan.Plan, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading contact plan csv")
	}
	if len(records) == 0 {
		return contactplan.NewPlan(), nil
	}

	plan := contactplan.NewPlan()
	for _, row := range records[1:] {
		if len(row) < 6 {
			return nil, errors.Errorf("contact plan csv: short row %v", row)
		}
		start, err := strconv.ParseInt(row[3], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "contact plan csv: startTime %q", row[3])
		}
		end, err := strconv.ParseInt(row[4], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "contact plan csv: endTime %q", row[4])
		}
		rate, err := strconv.ParseInt(row[5], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "contact plan csv: rate %q", row[5])
		}
		plan.AddContact(row[1], row[2], start, end, rate, 0, 1.0)
	}
	return plan, nil
}

// WriteCSV serializes plan in the CSV format.
func WriteCSV(w io.Writer, plan *contactplan.Plan) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "writing contact plan csv header")
	}
	for _, c := range plan.All() {
		row := []string{
			strconv.Itoa(c.ID),
			c.Src,
			c.Dst,
			strconv.FormatInt(c.Start, 10),
			strconv.FormatInt(c.End, 10),
			strconv.FormatInt(c.Rate, 10),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "writing contact plan csv row")
		}
	}
	return nil
}

// ReadJSONFile and ReadCSVFile are convenience wrappers for the cpconvert
// CLI subcommand.
func ReadJSONFile(path string) (*contactplan.Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %q", path)
	}
	defer f.Close()
	return ReadJSON(f)
}

func ReadCSVFile(path string) (*contactplan.Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %q", path)
	}
	defer f.Close()
	return ReadCSV(f)
}

// VerifyResult reports the outcome of Verify.
type VerifyResult struct {
	DuplicateIDs []int
	InvalidRange []int // contact ids where Start > End
}

// OK reports whether the plan passed verification cleanly.
func (v VerifyResult) OK() bool {
	return len(v.DuplicateIDs) == 0 && len(v.InvalidRange) == 0
}

// Verify checks a contact plan for duplicate contact ids and invalid
// (start > end) ranges, backing the cpconvert verify subcommand. It sees
// the ids of the loaded plan, which ReadJSON and ReadCSV assign afresh, so
// duplicate ids written in a contact-plan file are not detected.
func Verify(plan *contactplan.Plan) VerifyResult {
	var result VerifyResult
	seen := make(map[int]bool)
	for _, c := range plan.All() {
		if seen[c.ID] {
			result.DuplicateIDs = append(result.DuplicateIDs, c.ID)
		}
		seen[c.ID] = true
		if c.Start > c.End {
			result.InvalidRange = append(result.InvalidRange, c.ID)
		}
	}
	return result
}
