package models

import "time"

// RawJob is what the extractor produces before schema normalization. Values
// the sources do not type consistently are kept loose: list fields may hold a
// delimited string or a list, integer fields a number or a string.
//
// It shares JSON keys with Job, so previously written record files can be
// decoded into it and normalized again.
type RawJob struct {
	Title              *string `json:"Title"`
	Description        *string `json:"Description"`
	PrimaryDescription *string `json:"Primary Description"`
	DetailURL          string  `json:"Detail URL"`
	Location           *string `json:"Location"`

	Skill    any     `json:"Skill"`
	Insight  any     `json:"Insight"`
	JobState *string `json:"Job State"`

	PosterID           *string `json:"Poster Id"`
	CompanyName        *string `json:"Company Name"`
	CompanyLogo        *string `json:"Company Logo"`
	CompanyApplyURL    *string `json:"Company Apply Url"`
	CompanyDescription *string `json:"Company Description"`
	CompanyWebsite     *string `json:"Company Website"`
	Industry           *string `json:"Industry"`
	EmployeeCount      any     `json:"Employee Count"`
	Headquarters       *string `json:"Headquarters"`
	CompanyFounded     any     `json:"Company Founded"`
	Specialties        any     `json:"Specialties"`

	CreatedAt *time.Time `json:"Created At"`
	ScrapedAt *time.Time `json:"ScrapedAt"`

	Application *Application `json:"Application,omitempty"`
	Relevance   *Relevance   `json:"Relevance,omitempty"`
}
