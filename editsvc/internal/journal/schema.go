package journal

// Schema creates the patch journal tables. before_text is the complete
// pre-patch file content; it is what Undo restores.
const Schema = `
CREATE TABLE IF NOT EXISTS patches (
    id          TEXT PRIMARY KEY,
    file        TEXT NOT NULL,
    kind        TEXT NOT NULL,
    source      TEXT NOT NULL DEFAULT 'fast_path',
    before_hash TEXT NOT NULL,
    after_hash  TEXT NOT NULL,
    before_text TEXT NOT NULL,
    created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
    reverted_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_patches_file ON patches(file, created_at DESC);
`
