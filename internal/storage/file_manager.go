package storage

import (
	"os"

	"github.com/Duffman2k/duffvouchbot/internal/models"
	"github.com/Duffman2k/duffvouchbot/internal/providers"
	"github.com/Duffman2k/duffvouchbot/internal/storage/interfaces"
	"github.com/Duffman2k/duffvouchbot/internal/structures"
	json "github.com/goccy/go-json"
)

const snapshotVersion = 2

type snapshot struct {
	Version int                        `json:"version"`
	Records map[string]json.RawMessage `json:"records"`
}

// Snapshotter persists and restores the whole ledger between restarts.
type Snapshotter interface {
	SaveToFile(fileName string) error
	LoadFromFile(fileName string) error
	Close()
}

type FileManager struct {
	store      *MemoryStore
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, store *MemoryStore, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		store:      store,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	records := f.store.Snapshot()
	snap := snapshot{Version: snapshotVersion, Records: make(map[string]json.RawMessage, len(records))}
	for id, rec := range records {
		raw, err := json.Marshal(rec)
		if err != nil {
			return persistenceErr("snapshot encode", id, err)
		}
		snap.Records[id] = raw
	}

	jsonData, err := json.Marshal(snap)
	if err != nil {
		return persistenceErr("snapshot encode", "", err)
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return persistenceErr("snapshot compress", "", err)
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return persistenceErr("snapshot create", "", err)
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return persistenceErr("snapshot write", "", err)
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return persistenceErr("snapshot sync", "", err)
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return persistenceErr("snapshot close", "", err)
	}

	if err = os.Rename(tmpFile, fileName); err != nil {
		return persistenceErr("snapshot rename", "", err)
	}
	return nil
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile restores a snapshot. A missing file is not an error. Legacy
// files without an envelope hold a bare user id to record map.
func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return persistenceErr("snapshot read", "", err)
	}

	decompressed, err := f.compressor.Decompress(data)
	if err != nil {
		return persistenceErr("snapshot decompress", "", err)
	}

	var snap snapshot
	if err := json.Unmarshal(decompressed, &snap); err == nil && snap.Version == snapshotVersion && snap.Records != nil {
		return f.restore(snap.Records)
	}

	f.logger.Warnf(providers.TypeLedger, "Snapshot without version found, trying to migrate from legacy format")
	var legacy map[string]json.RawMessage
	if err := json.Unmarshal(decompressed, &legacy); err != nil {
		f.logger.Warnf(providers.TypeLedger, "Migration failed")
		return &models.DecodeError{What: "snapshot", Err: err}
	}
	if err := f.restore(legacy); err != nil {
		return err
	}
	f.logger.Warnf(providers.TypeLedger, "Migration from legacy format successful")
	return nil
}

func (f *FileManager) restore(raw map[string]json.RawMessage) error {
	records := make(map[string]*models.ActivityRecord, len(raw))
	for id, blob := range raw {
		rec, err := models.DecodeRecord(id, blob)
		if err != nil {
			return &models.DecodeError{What: "snapshot record " + id, Err: err}
		}
		records[id] = rec
	}
	f.store.PutData(records)
	f.logger.Infof(providers.TypeLedger, "Restored %d activity records", len(records))
	return nil
}

type noopSnapshotter struct{}

func (noopSnapshotter) SaveToFile(string) error   { return nil }
func (noopSnapshotter) LoadFromFile(string) error { return nil }
func (noopSnapshotter) Close()                    {}

// NewSnapshotter returns a FileManager for the memory driver with a snapshot
// path configured, and a no-op otherwise.
func NewSnapshotter(conf *structures.Config, store RecordStore, compressor interfaces.CompressorInterface, logger providers.Logger) Snapshotter {
	mem, ok := store.(*MemoryStore)
	if !ok || conf.Storage.SnapshotPath == "" {
		return noopSnapshotter{}
	}
	return NewFileManager(compressor, mem, logger)
}
