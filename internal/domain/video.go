package domain

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type VideoStatus string

const (
	VideoStatusUploaded   VideoStatus = "uploaded"
	VideoStatusProcessing VideoStatus = "processing"
	VideoStatusCompleted  VideoStatus = "completed"
	VideoStatusFailed     VideoStatus = "failed"
)

type Sensitivity string

const (
	SensitivityPending Sensitivity = "pending"
	SensitivitySafe    Sensitivity = "safe"
	SensitivityFlagged Sensitivity = "flagged"
)

// ProgressSteps is the fixed progress granularity of the processing
// pipeline. UI progress bars depend on these exact values and their order.
var ProgressSteps = []int{10, 30, 60, 80, 100}

// VideoOwner is the uploader identity attached to video reads.
type VideoOwner struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Video is one uploaded asset. TenantID and OwnerID never change after
// creation; StoredName is internal and never leaves the server. Owner is
// resolved by the store on reads and stays nil when the uploader's account
// no longer exists.
type Video struct {
	ID              string      `json:"id"`
	OwnerID         string      `json:"ownerId"`
	Owner           *VideoOwner `json:"owner,omitempty"`
	TenantID        string      `json:"tenantId"`
	OriginalName    string      `json:"originalFileName"`
	StoredName      string      `json:"-"`
	MimeType        string      `json:"mimeType"`
	SizeBytes       int64       `json:"sizeBytes"`
	Status          VideoStatus `json:"status"`
	Sensitivity     Sensitivity `json:"sensitivityStatus"`
	Progress        int         `json:"processingProgress"`
	DurationSeconds *int64      `json:"durationSeconds"`
	Categories      []string    `json:"categories"`
	Notes           string      `json:"notes"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

func NewVideo(ownerID, tenantID, originalName, mimeType string, sizeBytes int64, categories []string, notes string) *Video {
	now := time.Now().UTC()
	if categories == nil {
		categories = []string{}
	}
	return &Video{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		TenantID:     tenantID,
		OriginalName: originalName,
		StoredName:   GenerateStoredName(originalName),
		MimeType:     mimeType,
		SizeBytes:    sizeBytes,
		Status:       VideoStatusProcessing,
		Sensitivity:  SensitivityPending,
		Progress:     0,
		Categories:   categories,
		Notes:        notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// GenerateStoredName builds a collision-resistant storage name from a
// timestamp and random suffix plus the original extension. The result is
// deliberately decorrelated from the user-supplied filename.
func GenerateStoredName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%d-%09d%s", time.Now().UnixMilli(), rand.Int63n(1e9), ext)
}

// Classify is the sensitivity classification stub: a pure function of file
// size parity standing in for a real content-safety model.
func Classify(sizeBytes int64) Sensitivity {
	if sizeBytes%2 == 0 {
		return SensitivitySafe
	}
	return SensitivityFlagged
}

// IsTerminal reports whether the video has reached a final status.
func (v *Video) IsTerminal() bool {
	return v.Status == VideoStatusCompleted || v.Status == VideoStatusFailed
}

func ValidVideoStatus(s string) bool {
	switch VideoStatus(s) {
	case VideoStatusUploaded, VideoStatusProcessing, VideoStatusCompleted, VideoStatusFailed:
		return true
	}
	return false
}

func ValidSensitivity(s string) bool {
	switch Sensitivity(s) {
	case SensitivityPending, SensitivitySafe, SensitivityFlagged:
		return true
	}
	return false
}

// VideoFilter narrows tenant-scoped listings. Zero values mean "no filter".
type VideoFilter struct {
	Status      VideoStatus
	Sensitivity Sensitivity
	Search      string
	MinSize     *int64
	MaxSize     *int64
	DateFrom    *time.Time
	DateTo      *time.Time
}
