package main

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	nameMaxLength    = 120
	contactMaxLength = 180
)

var (
	emailRegex    = regexp.MustCompile(`^[\p{L}\p{N}_.-]+@[\p{L}\p{N}_.-]+\.[\p{L}\p{N}_]+$`)
	telegramRegex = regexp.MustCompile(`^@[A-Za-z0-9_]{3,}$`)
)

// InquiryForm holds the submitted order form values.
type InquiryForm struct {
	Name        string      `json:"name"`
	Contact     string      `json:"contact"`
	LicenseType LicenseType `json:"license_type"`
	Message     string      `json:"message"`
	Track       string      `json:"track,omitempty"`
	Honeypot    string      `json:"-"`
}

// FormErrors maps form field names to a message for the visitor.
type FormErrors map[string]string

func parseInquiryForm(values url.Values) *InquiryForm {
	return &InquiryForm{
		Name:        strings.TrimSpace(values.Get("name")),
		Contact:     strings.TrimSpace(values.Get("contact")),
		LicenseType: LicenseType(strings.TrimSpace(values.Get("license_type"))),
		Message:     strings.TrimSpace(values.Get("message")),
		Track:       strings.TrimSpace(values.Get("track")),
		Honeypot:    values.Get("honeypot"),
	}
}

// initialInquiryForm builds the form shown on first display, optionally
// prefilled with a track and a license short code.
func initialInquiryForm(track *Track, licenseCode string) *InquiryForm {
	form := &InquiryForm{LicenseType: LicenseNonExclusive}
	if track != nil {
		form.Track = strconv.FormatUint(track.ID, 10)
	}
	if license, ok := licenseCodes[licenseCode]; ok {
		form.LicenseType = license
	}
	return form
}

func validContact(contact string) bool {
	return emailRegex.MatchString(contact) || telegramRegex.MatchString(contact)
}

func (f *InquiryForm) Validate() FormErrors {
	errs := FormErrors{}

	switch {
	case f.Name == "":
		errs["name"] = "This field is required."
	case utf8.RuneCountInString(f.Name) > nameMaxLength:
		errs["name"] = "Ensure this value has at most 120 characters."
	}

	switch {
	case f.Contact == "":
		errs["contact"] = "This field is required."
	case utf8.RuneCountInString(f.Contact) > contactMaxLength:
		errs["contact"] = "Ensure this value has at most 180 characters."
	case !validContact(f.Contact):
		errs["contact"] = "Enter a valid email or Telegram handle (@username)."
	}

	if !f.LicenseType.Valid() {
		errs["license_type"] = "Select a valid license."
	}

	if f.Honeypot != "" {
		errs["honeypot"] = "Spam detected."
	}

	return errs
}

// Inquiry turns a validated form into a new inquiry for track, which may be nil.
func (f *InquiryForm) Inquiry(track *Track) *Inquiry {
	inquiry := &Inquiry{
		Name:        f.Name,
		Contact:     f.Contact,
		LicenseType: f.LicenseType,
		Message:     f.Message,
		Status:      StatusNew,
		Track:       track,
	}
	if track != nil {
		id := track.ID
		inquiry.TrackID = &id
	}
	return inquiry
}
