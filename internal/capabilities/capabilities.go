package capabilities

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/toolbench/portal/internal/models"
)

// Name identifies one capability of the workbench. The set is closed:
// dispatch happens over an explicit switch, never by dynamic lookup.
type Name string

const (
	FileExtraction      Name = "file_extraction"
	ImageRecognition    Name = "image_recognition"
	TableConverter      Name = "table_converter"
	CarPlateRecognition Name = "car_plate_recognition"
	RegexGenerator      Name = "regex_generator"
	SongRecognition     Name = "song_recognition"
	UserDatabase        Name = "user_database"
)

var (
	// ErrUnknownCapability means the requested name is not in the closed set
	ErrUnknownCapability = errors.New("unknown capability")
	// ErrNotConfigured means the capability needs a remote backend and none is set
	ErrNotConfigured = errors.New("capability backend not configured")
)

// ParseName validates a capability name from the URL
func ParseName(s string) (Name, error) {
	switch n := Name(s); n {
	case FileExtraction, ImageRecognition, TableConverter,
		CarPlateRecognition, RegexGenerator, SongRecognition, UserDatabase:
		return n, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownCapability, s)
	}
}

// Descriptor is the listing entry for one capability
type Descriptor struct {
	Name   Name   `json:"name"`
	Title  string `json:"title"`
	Remote bool   `json:"remote"`
}

// Result is what a capability run returns to the handler
type Result struct {
	ContentType string
	Body        []byte
}

// AdminLister is the slice of the admin service the user-database
// capability needs.
type AdminLister interface {
	ListUsers(ctx context.Context) ([]models.UserListItem, error)
}

// Registry holds the closed capability set and the collaborators the
// individual capabilities run against.
type Registry struct {
	admin      AdminLister
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRegistry creates a capability registry. baseURL may be empty, in which
// case the remote capabilities report ErrNotConfigured when run.
func NewRegistry(admin AdminLister, baseURL string, logger *zap.Logger) *Registry {
	return &Registry{
		admin:      admin,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// List returns the capabilities visible to the given role. The user database
// is moderator-only.
func (reg *Registry) List(role models.Role) []Descriptor {
	descriptors := []Descriptor{
		{Name: FileExtraction, Title: "File Extraction", Remote: true},
		{Name: ImageRecognition, Title: "Image Recognition", Remote: true},
		{Name: TableConverter, Title: "Table Converter", Remote: true},
		{Name: CarPlateRecognition, Title: "Car Plate Recognition", Remote: true},
		{Name: RegexGenerator, Title: "RegEx Generator", Remote: false},
		{Name: SongRecognition, Title: "Song Recognition", Remote: true},
	}

	if role == models.RoleModerator {
		descriptors = append(descriptors, Descriptor{
			Name: UserDatabase, Title: "User Database", Remote: false,
		})
	}

	return descriptors
}

// Run executes one capability for a caller holding the given role
func (reg *Registry) Run(ctx context.Context, name Name, role models.Role, input []byte) (Result, error) {
	switch name {
	case RegexGenerator:
		return reg.runRegex(input)
	case UserDatabase:
		if role != models.RoleModerator {
			return Result{}, models.ErrForbidden
		}
		return reg.runUserDatabase(ctx)
	case FileExtraction, ImageRecognition, TableConverter,
		CarPlateRecognition, SongRecognition:
		return reg.runRemote(ctx, name, input)
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownCapability, name)
	}
}

func (reg *Registry) runUserDatabase(ctx context.Context) (Result, error) {
	users, err := reg.admin.ListUsers(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list users: %w", err)
	}

	body, err := json.Marshal(users)
	if err != nil {
		return Result{}, fmt.Errorf("marshal users: %w", err)
	}

	return Result{ContentType: "application/json", Body: body}, nil
}

// runRemote forwards the input bytes to the configured backend for the
// capability and returns the response body as-is. The heavy lifting
// (OCR, model inference, table extraction, audio fingerprinting) lives
// entirely on the other side.
func (reg *Registry) runRemote(ctx context.Context, name Name, input []byte) (Result, error) {
	if reg.baseURL == "" {
		return Result{}, fmt.Errorf("%w: %s", ErrNotConfigured, name)
	}

	url := fmt.Sprintf("%s/%s", reg.baseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(input))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := reg.httpClient.Do(req)
	if err != nil {
		reg.logger.Error("capability backend unreachable",
			zap.String("capability", string(name)),
			zap.Error(err),
		)
		return Result{}, fmt.Errorf("call %s backend: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read %s response: %w", name, err)
	}

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("%s backend returned status %d", name, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return Result{ContentType: contentType, Body: body}, nil
}
