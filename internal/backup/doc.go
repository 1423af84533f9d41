// Package backup captures and restores the persistence state of an AIONBD
// engine: the snapshot file, the write-ahead log, and the directory of
// incremental WAL segments derived from the snapshot path.
//
// # Archive Format
//
// A backup is a single gzip-compressed tar whose root members are a subset of:
//
//	snapshot.json         copy of the snapshot file
//	wal.jsonl             copy of the WAL file
//	incrementals/...      recursive copy of the incrementals directory
//	manifest.json         inventory of every other member
//
// The manifest records a format version, the UTC creation time, the live
// paths the backup was taken from, and for every archived file its relative
// path, size and SHA-256 digest:
//
//	{
//	  "format_version": 1,
//	  "created_at_utc": "2026-01-23T10:07:12Z",
//	  "source": {"snapshot_path": "...", "wal_path": "...", "incremental_path": "..."},
//	  "entries": [{"path": "snapshot.json", "size_bytes": 18, "sha256": "..."}]
//	}
//
// # Creating Backups
//
// Use [Manager.Backup] with the live paths and an output file:
//
//	mgr := backup.NewManager()
//	result, err := mgr.Backup(backup.NewArtifactSet(snapshot, wal), "backups/state.tar.gz")
//
// Artifacts are staged into a private temporary directory first, so the
// archive never mixes content from different moments of a single file.
// The engine should still be quiesced to avoid a torn snapshot and WAL pair.
//
// # Restoring Backups
//
// [Manager.Restore] extracts the archive into a private directory, rejecting
// it outright if any member path would escape that directory or is a link.
// The manifest is then parsed strictly and every entry re-hashed. Only after
// the whole archive validates are live targets considered:
//
//	result, err := mgr.Restore("backups/state.tar.gz", backup.NewArtifactSet(snapshot, wal), force)
//
// Existing targets cause [ErrTargetsExist] unless force is set. Files are
// installed by copy-to-temp and rename, directories by swapping in a fully
// staged copy. A restore interrupted part way may leave some targets restored
// and others untouched; re-running it with force completes it.
//
// # Retention Management
//
// [Manager.List] and [Manager.Prune] operate on archives named by
// [DefaultArchiveName] in the backup directory.
//
// # Error Handling
//
// Every failure aborts the whole operation. Use [errors.Is] with the
// sentinel errors ([ErrNoPersistenceData], [ErrUnsafeArchiveEntry],
// [ErrManifestEntryMismatch], ...) to classify a failure; archive validation
// failures also match [ErrInvalidArchive] and filesystem failures match [ErrIO].
package backup
