package controller

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/loadbank-hmi/internal/config"
	"github.com/oshokin/loadbank-hmi/internal/domain/alarm"
	"github.com/oshokin/loadbank-hmi/internal/remote"
)

// Repository defines persistence operations for the controller image.
type Repository interface {
	Load(ctx context.Context) (*alarm.ControllerImage, error)
	Save(ctx context.Context, image *alarm.ControllerImage) error
}

const (
	keyActive   = "Active"
	keyHistory  = "History"
	keyNextID   = "Next_ID"
	keyRaisedAt = "Raised_At"
)

// FileRepository persists the controller image to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the scenario file.
	path string
	// mu protects concurrent access to the file.
	mu sync.Mutex
}

var (
	// ErrNotFound is returned when the scenario file does not exist yet.
	ErrNotFound = errors.New("controller image not found")
	// errMalformed is returned when a section of the file has the wrong shape.
	errMalformed = errors.New("malformed controller image")
)

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the image from disk.
func (r *FileRepository) Load(_ context.Context) (*alarm.ControllerImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var document structpb.Struct
	if err = protojson.Unmarshal(contents, &document); err != nil {
		return nil, fmt.Errorf("decode scenario file: %w", err)
	}

	return fromMap(document.AsMap())
}

// Save writes the image to disk.
func (r *FileRepository) Save(_ context.Context, image *alarm.ControllerImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	document, err := structpb.NewStruct(toMap(image))
	if err != nil {
		return fmt.Errorf("encode controller image: %w", err)
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline:       true,
		EmitUnpopulated: true,
	}

	data, err := marshalOptions.Marshal(document)
	if err != nil {
		return fmt.Errorf("encode controller image: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write scenario file: %w", err)
	}

	return nil
}

// toMap converts the image into the Struct-compatible document.
func toMap(image *alarm.ControllerImage) map[string]any {
	if image == nil {
		image = new(alarm.ControllerImage)
	}

	active := make([]any, 0, len(image.Active))

	for _, raised := range image.Active {
		fields := remote.EncodeActiveAlarm(raised.ActiveAlarm)
		if !raised.RaisedAt.IsZero() {
			fields[keyRaisedAt] = raised.RaisedAt.UTC().Format(time.RFC3339Nano)
		}

		active = append(active, fields)
	}

	history := make([]any, 0, len(image.History))
	for _, record := range image.History {
		history = append(history, remote.EncodeHistoryRecord(record))
	}

	return map[string]any{
		keyActive:  active,
		keyHistory: history,
		keyNextID:  image.NextID,
	}
}

// fromMap is the inverse of toMap.
func fromMap(document map[string]any) (*alarm.ControllerImage, error) {
	image := new(alarm.ControllerImage)
	image.NextID, _ = remote.AsInt(document[keyNextID])

	activeList, _ := document[keyActive].([]any)
	for i, entry := range activeList {
		a, ok := remote.DecodeActiveAlarm(entry)
		if !ok {
			return nil, fmt.Errorf("%w: active entry %d", errMalformed, i)
		}

		raised := alarm.RaisedAlarm{ActiveAlarm: a}

		if stamp := remote.AsString(entry.(map[string]any)[keyRaisedAt]); stamp != "" {
			at, err := time.Parse(time.RFC3339Nano, stamp)
			if err != nil {
				return nil, fmt.Errorf("%w: active entry %d: %w", errMalformed, i, err)
			}

			raised.RaisedAt = at
		}

		image.Active = append(image.Active, raised)
		image.NextID = max(image.NextID, a.ID+1)
	}

	historyList, _ := document[keyHistory].([]any)
	for i, entry := range historyList {
		record, ok := remote.DecodeHistoryRecord(entry)
		if !ok {
			return nil, fmt.Errorf("%w: history entry %d", errMalformed, i)
		}

		image.History = append(image.History, record)
	}

	return image, nil
}
