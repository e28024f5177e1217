package schema

import (
	"strings"

	"dlithe/intern-portal/intern-portal-backend/pkg/dates"
)

// Canonical field names. Every input header resolves to one of these.
const (
	FieldName                  = "Name"
	FieldUSN                   = "USN"
	FieldCollege               = "College"
	FieldEmail                 = "Email"
	FieldPhone                 = "Phone"
	FieldRegisteredDate        = "Registered"
	FieldStartDate             = "Start Date"
	FieldEndDate               = "End Date"
	FieldProgram               = "Program"
	FieldMode                  = "Mode"
	FieldPaymentStatus         = "Payment Status"
	FieldCertificateIssuedDate = "Certificate Issued Date"
	FieldInternID              = "Intern ID"
	FieldTopic                 = "Topic"
	FieldCertificateID         = "Certificate ID"
	FieldDomain                = "Domain"
)

// dateFields are normalized to canonical YYYY-MM-DD form during mapping.
var dateFields = map[string]bool{
	FieldStartDate:             true,
	FieldEndDate:               true,
	FieldCertificateIssuedDate: true,
}

// FieldAlias binds one canonical field to its accepted input headers in
// priority order. Alias tables are declared as ordered slices so binding is
// deterministic: when two fields could claim the same header, the
// first-declared field wins.
type FieldAlias struct {
	Field   string   `json:"field"`
	Aliases []string `json:"aliases"`
}

// DefaultAliases returns the built-in alias table. Deployments may override
// it through configuration.
func DefaultAliases() []FieldAlias {
	return []FieldAlias{
		{Field: FieldName, Aliases: []string{"Name", "Full Name", "Student Name"}},
		{Field: FieldUSN, Aliases: []string{"USN", "University Serial Number", "ID"}},
		{Field: FieldCollege, Aliases: []string{"College", "Institution", "University"}},
		{Field: FieldEmail, Aliases: []string{"Email", "Email Address", "E-mail"}},
		{Field: FieldPhone, Aliases: []string{"Phone", "Phone Number", "Contact"}},
		{Field: FieldRegisteredDate, Aliases: []string{"Registered", "Registration Date"}},
		{Field: FieldStartDate, Aliases: []string{"Start Date", "Internship Start", "Start"}},
		{Field: FieldEndDate, Aliases: []string{"End Date", "Internship End", "End"}},
		{Field: FieldProgram, Aliases: []string{"Program", "Course", "Internship Program"}},
		{Field: FieldMode, Aliases: []string{"Mode", "Internship Mode"}},
		{Field: FieldPaymentStatus, Aliases: []string{"Payment Status", "Payment", "Paid"}},
		{Field: FieldCertificateIssuedDate, Aliases: []string{"Certificate Issued Date", "Issue Date", "Cert Date"}},
		{Field: FieldInternID, Aliases: []string{"Intern ID", "ID", "Internship ID"}},
		{Field: FieldTopic, Aliases: []string{"Topic", "Project Topic", "Internship Topic"}},
		{Field: FieldCertificateID, Aliases: []string{"Certificate ID", "Cert ID", "Certificate Number"}},
		{Field: FieldDomain, Aliases: []string{"Domain", "Internship Domain", "Course Domain"}},
	}
}

// CanonicalRecord is one normalized intern entry. String fields are trimmed;
// the empty string means the source had no value. Date fields hold canonical
// YYYY-MM-DD or empty.
type CanonicalRecord struct {
	Name                  string
	USN                   string
	College               string
	Email                 string
	Phone                 string
	RegisteredDate        string
	StartDate             string
	EndDate               string
	Program               string
	Mode                  string
	PaymentStatus         string
	CertificateIssuedDate string
	InternID              string
	Topic                 string
	CertificateID         string
	Domain                string
}

// Mapper resolves arbitrary input headers to the canonical field set.
type Mapper struct {
	aliases []FieldAlias
}

// NewMapper builds a mapper from an alias table; nil means DefaultAliases.
func NewMapper(aliases []FieldAlias) *Mapper {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return &Mapper{aliases: aliases}
}

// MapTable produces one CanonicalRecord per input row, preserving row order.
// A field with no alias present among the headers is empty for every row.
// The mapping is pure: the same table and alias set always yield the same
// records.
func (m *Mapper) MapTable(t Table) []CanonicalRecord {
	// Bind each canonical field to the first alias found among the headers.
	// Fields bind independently; keeping alias lists disjoint is the alias
	// table's job, not handled here.
	bound := make(map[string]int, len(m.aliases))
	for _, fa := range m.aliases {
		bound[fa.Field] = -1
		for _, alias := range fa.Aliases {
			if idx := t.columnIndex(alias); idx >= 0 {
				bound[fa.Field] = idx
				break
			}
		}
	}

	records := make([]CanonicalRecord, 0, len(t.Rows))
	for i := range t.Rows {
		value := func(field string) string {
			col := bound[field]
			if col < 0 {
				return ""
			}
			raw := strings.TrimSpace(t.cell(i, col))
			if dateFields[field] {
				return dates.Normalize(raw)
			}
			return raw
		}

		records = append(records, CanonicalRecord{
			Name:                  value(FieldName),
			USN:                   value(FieldUSN),
			College:               value(FieldCollege),
			Email:                 value(FieldEmail),
			Phone:                 value(FieldPhone),
			RegisteredDate:        value(FieldRegisteredDate),
			StartDate:             value(FieldStartDate),
			EndDate:               value(FieldEndDate),
			Program:               value(FieldProgram),
			Mode:                  value(FieldMode),
			PaymentStatus:         value(FieldPaymentStatus),
			CertificateIssuedDate: value(FieldCertificateIssuedDate),
			InternID:              value(FieldInternID),
			Topic:                 value(FieldTopic),
			CertificateID:         value(FieldCertificateID),
			Domain:                value(FieldDomain),
		})
	}
	return records
}
