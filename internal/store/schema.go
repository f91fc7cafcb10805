package store

// Table schemas per dialect. Call Store.Init() or apply manually.
//
// devis_lignes carries no price columns: unit prices and tax rates are
// recognized during parsing only to be discarded.

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS devis_lignes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	devis_id TEXT NOT NULL,
	ordre INTEGER NOT NULL,
	code TEXT NOT NULL DEFAULT '',
	designation TEXT NOT NULL,
	quantite REAL NOT NULL,
	unite TEXT NOT NULL,
	corps_etat TEXT NOT NULL DEFAULT '',
	titre_tache TEXT NOT NULL DEFAULT '',
	generer_tache INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_devis_lignes_devis ON devis_lignes(devis_id);

CREATE TABLE IF NOT EXISTS devis_structure (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	devis_id TEXT NOT NULL,
	ordre INTEGER NOT NULL,
	code TEXT NOT NULL,
	titre TEXT NOT NULL,
	niveau INTEGER NOT NULL,
	parent_code TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_devis_structure_devis ON devis_structure(devis_id);

CREATE TABLE IF NOT EXISTS chantier_tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	chantier_id TEXT NOT NULL,
	titre TEXT NOT NULL,
	corps_etat TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'A_FAIRE',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chantier_tasks_chantier ON chantier_tasks(chantier_id);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS devis_lignes (
	id BIGSERIAL PRIMARY KEY,
	devis_id TEXT NOT NULL,
	ordre INTEGER NOT NULL,
	code TEXT NOT NULL DEFAULT '',
	designation TEXT NOT NULL,
	quantite DOUBLE PRECISION NOT NULL,
	unite TEXT NOT NULL,
	corps_etat TEXT NOT NULL DEFAULT '',
	titre_tache TEXT NOT NULL DEFAULT '',
	generer_tache BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_devis_lignes_devis ON devis_lignes(devis_id);

CREATE TABLE IF NOT EXISTS devis_structure (
	id BIGSERIAL PRIMARY KEY,
	devis_id TEXT NOT NULL,
	ordre INTEGER NOT NULL,
	code TEXT NOT NULL,
	titre TEXT NOT NULL,
	niveau INTEGER NOT NULL,
	parent_code TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_devis_structure_devis ON devis_structure(devis_id);

CREATE TABLE IF NOT EXISTS chantier_tasks (
	id BIGSERIAL PRIMARY KEY,
	chantier_id TEXT NOT NULL,
	titre TEXT NOT NULL,
	corps_etat TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'A_FAIRE',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chantier_tasks_chantier ON chantier_tasks(chantier_id);
`
