package models

import (
	"strings"
	"time"
)

type Division string

const (
	DivisionPermit   Division = "PERMIT"
	DivisionSND      Division = "SND"
	DivisionCW       Division = "CW"
	DivisionEL       Division = "EL"
	DivisionDocument Division = "Document"
)

var divisionOrder = [...]Division{DivisionPermit, DivisionSND, DivisionCW, DivisionEL, DivisionDocument}

// Divisions returns the five divisions in display order.
func Divisions() []Division {
	out := make([]Division, len(divisionOrder))
	copy(out, divisionOrder[:])
	return out
}

// ParseDivision matches a stored or user supplied division case-insensitively.
func ParseDivision(value string) (Division, bool) {
	v := strings.TrimSpace(value)
	for _, d := range divisionOrder {
		if strings.EqualFold(v, string(d)) {
			return d, true
		}
	}
	return "", false
}

// Key is the lowercase form used in stored task records.
func (d Division) Key() string {
	return strings.ToLower(string(d))
}

func (d Division) Display() string {
	return strings.ToUpper(string(d))
}

const StatusRejected = "Rejected"

type TaskRecord struct {
	ID        string        `json:"id"`
	SiteID    string        `json:"siteId"`
	SiteName  string        `json:"siteName"`
	City      string        `json:"city,omitempty"`
	Division  string        `json:"division"`
	Sections  []UploadEvent `json:"sections"`
	CreatedAt time.Time     `json:"createdAt"`
}

type UploadEvent struct {
	Section      string     `json:"section"`
	Division     string     `json:"division,omitempty"`
	StatusTask   string     `json:"status_task,omitempty"`
	RejectReason string     `json:"reject_reason,omitempty"`
	UploadedAt   UploadTime `json:"uploadedAt"`
}

func (e UploadEvent) Rejected() bool {
	return e.StatusTask == StatusRejected
}

type BoqDocument struct {
	ID        string    `json:"id"`
	City      string    `json:"city"`
	SiteID    string    `json:"siteId,omitempty"`
	SiteName  string    `json:"siteName"`
	BoqType   BoqType   `json:"boqType"`
	Items     []BoqItem `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
}

// MergedBoq is every milestone document of one (city, siteName) pair folded together.
type MergedBoq struct {
	City         string    `json:"city"`
	SiteName     string    `json:"siteName"`
	BeforeDrmBoq []BoqItem `json:"beforeDrmBoq,omitempty"`
	AfterDrmBoq  []BoqItem `json:"afterDrmBoq,omitempty"`
	ConstDoneBoq []BoqItem `json:"constDoneBoq,omitempty"`
	AbdBoq       []BoqItem `json:"abdBoq,omitempty"`
}

func (m *MergedBoq) Set(t BoqType, items []BoqItem) {
	switch t {
	case BoqBeforeDrm:
		m.BeforeDrmBoq = items
	case BoqAfterDrm:
		m.AfterDrmBoq = items
	case BoqConstructionDone:
		m.ConstDoneBoq = items
	case BoqAbd:
		m.AbdBoq = items
	}
}

func (m MergedBoq) Items(t BoqType) []BoqItem {
	switch t {
	case BoqBeforeDrm:
		return m.BeforeDrmBoq
	case BoqAfterDrm:
		return m.AfterDrmBoq
	case BoqConstructionDone:
		return m.ConstDoneBoq
	case BoqAbd:
		return m.AbdBoq
	}
	return nil
}

type ProgressResult struct {
	Permit   string `json:"Permit" yaml:"Permit"`
	SND      string `json:"SND" yaml:"SND"`
	CW       string `json:"CW" yaml:"CW"`
	EL       string `json:"EL" yaml:"EL"`
	Document string `json:"Document" yaml:"Document"`

	PermitRejected   bool `json:"PermitRejected" yaml:"PermitRejected"`
	SNDRejected      bool `json:"SNDRejected" yaml:"SNDRejected"`
	CWRejected       bool `json:"CWRejected" yaml:"CWRejected"`
	ELRejected       bool `json:"ELRejected" yaml:"ELRejected"`
	DocumentRejected bool `json:"DocumentRejected" yaml:"DocumentRejected"`

	PermitRejectReason   string `json:"PermitRejectReason" yaml:"PermitRejectReason"`
	SNDRejectReason      string `json:"SNDRejectReason" yaml:"SNDRejectReason"`
	CWRejectReason       string `json:"CWRejectReason" yaml:"CWRejectReason"`
	ELRejectReason       string `json:"ELRejectReason" yaml:"ELRejectReason"`
	DocumentRejectReason string `json:"DocumentRejectReason" yaml:"DocumentRejectReason"`
}

const ZeroRatio = "0/0"

// ZeroProgress is the result for sites with no input, no data or a failed read.
func ZeroProgress() ProgressResult {
	return ProgressResult{
		Permit:   ZeroRatio,
		SND:      ZeroRatio,
		CW:       ZeroRatio,
		EL:       ZeroRatio,
		Document: ZeroRatio,
	}
}

func (p ProgressResult) Ratio(d Division) string {
	switch d {
	case DivisionPermit:
		return p.Permit
	case DivisionSND:
		return p.SND
	case DivisionCW:
		return p.CW
	case DivisionEL:
		return p.EL
	case DivisionDocument:
		return p.Document
	}
	return ""
}

func (p ProgressResult) Rejected(d Division) bool {
	switch d {
	case DivisionPermit:
		return p.PermitRejected
	case DivisionSND:
		return p.SNDRejected
	case DivisionCW:
		return p.CWRejected
	case DivisionEL:
		return p.ELRejected
	case DivisionDocument:
		return p.DocumentRejected
	}
	return false
}

func (p ProgressResult) RejectReason(d Division) string {
	switch d {
	case DivisionPermit:
		return p.PermitRejectReason
	case DivisionSND:
		return p.SNDRejectReason
	case DivisionCW:
		return p.CWRejectReason
	case DivisionEL:
		return p.ELRejectReason
	case DivisionDocument:
		return p.DocumentRejectReason
	}
	return ""
}

// SetDivision writes all three fields of one division.
func (p *ProgressResult) SetDivision(d Division, ratio string, rejected bool, reason string) {
	switch d {
	case DivisionPermit:
		p.Permit, p.PermitRejected, p.PermitRejectReason = ratio, rejected, reason
	case DivisionSND:
		p.SND, p.SNDRejected, p.SNDRejectReason = ratio, rejected, reason
	case DivisionCW:
		p.CW, p.CWRejected, p.CWRejectReason = ratio, rejected, reason
	case DivisionEL:
		p.EL, p.ELRejected, p.ELRejectReason = ratio, rejected, reason
	case DivisionDocument:
		p.Document, p.DocumentRejected, p.DocumentRejectReason = ratio, rejected, reason
	}
}

// SiteRef identifies a site row in list views.
type SiteRef struct {
	SiteID   string `json:"site_id" validate:"required_without=SiteName"`
	SiteName string `json:"site_name" validate:"required_without=SiteID"`
	City     string `json:"city,omitempty"`
}
