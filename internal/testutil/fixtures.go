// Package testutil provides fixtures shared by the package tests: record
// builders for both schemas, dataset constructors and deterministic query
// ID generators.
package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/queryir"
	"github.com/roach88/insight/internal/schema"
)

// Section describes a courses record by logical field.
type Section struct {
	Dept       string
	ID         string
	Instructor string
	Title      string
	UUID       string
	Avg        float64
	Pass       float64
	Fail       float64
	Audit      float64
	Year       float64
}

// Record stores the section under its physical attribute names.
func (s Section) Record() ir.Record {
	return ir.Record{
		"Subject":   ir.String(s.Dept),
		"Course":    ir.String(s.ID),
		"Professor": ir.String(s.Instructor),
		"Title":     ir.String(s.Title),
		"id":        ir.String(s.UUID),
		"Avg":       ir.Number(s.Avg),
		"Pass":      ir.Number(s.Pass),
		"Fail":      ir.Number(s.Fail),
		"Audit":     ir.Number(s.Audit),
		"Year":      ir.Number(s.Year),
	}
}

// Room describes a rooms record by logical field.
type Room struct {
	Fullname  string
	Shortname string
	Number    string
	Name      string
	Address   string
	Type      string
	Furniture string
	Href      string
	Lat       float64
	Lon       float64
	Seats     float64
}

// Record stores the room under its physical attribute names.
func (r Room) Record() ir.Record {
	return ir.Record{
		"fullName":   ir.String(r.Fullname),
		"shortName":  ir.String(r.Shortname),
		"roomNumber": ir.String(r.Number),
		"name":       ir.String(r.Name),
		"address":    ir.String(r.Address),
		"roomType":   ir.String(r.Type),
		"furniture":  ir.String(r.Furniture),
		"href":       ir.String(r.Href),
		"lat":        ir.Number(r.Lat),
		"lon":        ir.Number(r.Lon),
		"capacity":   ir.Number(r.Seats),
	}
}

// CoursesDataset builds a courses dataset from sections.
func CoursesDataset(id string, sections ...Section) *ir.Dataset {
	records := make([]ir.Record, len(sections))
	for i, s := range sections {
		records[i] = s.Record()
	}
	return &ir.Dataset{ID: id, Kind: schema.KindCourses, Records: records}
}

// RoomsDataset builds a rooms dataset from rooms.
func RoomsDataset(id string, rooms ...Room) *ir.Dataset {
	records := make([]ir.Record, len(rooms))
	for i, r := range rooms {
		records[i] = r.Record()
	}
	return &ir.Dataset{ID: id, Kind: schema.KindRooms, Records: records}
}

// GenerateSections returns n sections with distinct UUIDs. Departments cycle
// through depts (or "cpsc" if none are given) and averages run 50, 51, ...
// wrapping at 100.
func GenerateSections(n int, depts ...string) []Section {
	if len(depts) == 0 {
		depts = []string{"cpsc"}
	}
	sections := make([]Section, n)
	for i := range sections {
		sections[i] = Section{
			Dept:       depts[i%len(depts)],
			ID:         fmt.Sprintf("%d", 100+i%400),
			Instructor: fmt.Sprintf("prof %d", i%37),
			Title:      "generated",
			UUID:       fmt.Sprintf("%d", 10000+i),
			Avg:        float64(50 + i%51),
			Pass:       float64(i % 200),
			Fail:       float64(i % 13),
			Audit:      float64(i % 3),
			Year:       float64(2000 + i%20),
		}
	}
	return sections
}

// SampleSections is a small courses fixture used across packages.
func SampleSections() []Section {
	return []Section{
		{Dept: "cpsc", ID: "310", Instructor: "holmes, reid", Title: "intr sftwr eng", UUID: "1001", Avg: 78.5, Pass: 120, Fail: 4, Audit: 1, Year: 2015},
		{Dept: "cpsc", ID: "310", Instructor: "allen, meghan", Title: "intr sftwr eng", UUID: "1002", Avg: 81.25, Pass: 98, Fail: 2, Audit: 0, Year: 2016},
		{Dept: "math", ID: "100", Instructor: "", Title: "diff calculus", UUID: "1003", Avg: 69.1, Pass: 300, Fail: 41, Audit: 3, Year: 2015},
		{Dept: "cpsc", ID: "110", Instructor: "kiczales, gregor", Title: "comptn, progrm", UUID: "1004", Avg: 85.02, Pass: 210, Fail: 12, Audit: 2, Year: 1900},
		{Dept: "phys", ID: "101", Instructor: "", Title: "energy", UUID: "1005", Avg: 72, Pass: 80, Fail: 9, Audit: 0, Year: 2016},
	}
}

// SampleRooms is a small rooms fixture used across packages.
func SampleRooms() []Room {
	return []Room{
		{Fullname: "Hugh Dempster Pavilion", Shortname: "DMP", Number: "110", Name: "DMP_110", Address: "6245 Agronomy Road V6T 1Z4", Type: "Tiered Large Group", Furniture: "Classroom-Fixed Tables/Movable Chairs", Href: "http://example.org/DMP-110", Lat: 49.26125, Lon: -123.24807, Seats: 120},
		{Fullname: "Hugh Dempster Pavilion", Shortname: "DMP", Number: "201", Name: "DMP_201", Address: "6245 Agronomy Road V6T 1Z4", Type: "Small Group", Furniture: "Classroom-Movable Tables & Chairs", Href: "http://example.org/DMP-201", Lat: 49.26125, Lon: -123.24807, Seats: 40},
		{Fullname: "Orchard Commons", Shortname: "ORCH", Number: "1001", Name: "ORCH_1001", Address: "6363 Agronomy Road", Type: "Studio Lab", Furniture: "Classroom-Movable Tables & Chairs", Href: "http://example.org/ORCH-1001", Lat: 49.26048, Lon: -123.24944, Seats: 25},
		{Fullname: "Woodward (Instructional Resources Centre-IRC)", Shortname: "WOOD", Number: "2", Name: "WOOD_2", Address: "2194 Health Sciences Mall", Type: "Tiered Large Group", Furniture: "Classroom-Fixed Tables/Fixed Chairs", Href: "http://example.org/WOOD-2", Lat: 49.26478, Lon: -123.24673, Seats: 503},
	}
}

// Query decodes a JSON query document, failing the test on malformed JSON.
func Query(t testing.TB, doc string) any {
	t.Helper()
	raw, err := queryir.Decode([]byte(doc))
	require.NoError(t, err)
	return raw
}
