// Copyright 2018 Rob Marissen.
// SPDX-License-Identifier: MIT

// Package mzsearch identifies peptides from MS2 spectra by searching an
// in silico digested protein database.
//
// A Database is built once from a FASTA file and is read-only afterwards;
// Search and the Annotate methods may be called concurrently.
package mzsearch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/524D/mzsearch/internal/fasta"
	"github.com/524D/mzsearch/internal/index"
	"github.com/524D/mzsearch/internal/modtable"
)

// Protein is a FASTA record
type Protein = fasta.Protein

// Database is a searchable peptide database
type Database struct {
	idx    *index.Index
	mods   *modtable.Table
	cfg    config
	logger *slog.Logger
}

// Build reads the FASTA file at path and builds a Database
func Build(ctx context.Context, path string, opts ...Option) (*Database, error) {
	proteins, err := fasta.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("FASTA file %s: %w", path, err)
		}
		if errors.Is(err, fasta.ErrNoProteins) {
			return nil, &ConfigError{Field: "fasta", Message: fmt.Sprintf("%s: %v", path, err), Err: err}
		}
		return nil, fmt.Errorf("read FASTA file %s: %w", path, err)
	}
	return BuildFromProteins(ctx, proteins, opts...)
}

// BuildFromProteins builds a Database from proteins
func BuildFromProteins(ctx context.Context, proteins []Protein, opts ...Option) (*Database, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.search.Validate(); err != nil {
		return nil, err
	}
	dp, err := cfg.digest.resolve()
	if err != nil {
		return nil, err
	}
	gen, err := cfg.decoyGenerator()
	if err != nil {
		return nil, err
	}
	mods, err := modtable.New(cfg.staticMods, cfg.variableMods)
	if err != nil {
		return nil, configError("mods", err)
	}

	idx, err := index.Build(ctx, proteins, index.Parameters{
		Digest:          dp,
		Mods:            mods,
		GenerateDecoys:  cfg.generateDecoys,
		Decoys:          gen,
		MaxVariableMods: cfg.maxVariableMods,
		Workers:         cfg.workers,
		Logger:          cfg.logger,
	})
	if err != nil {
		return nil, err
	}
	return &Database{
		idx:    idx,
		mods:   mods,
		cfg:    cfg,
		logger: cfg.logger,
	}, nil
}

// Peptides returns the number of peptides in the index, including decoys
// and modified forms
func (db *Database) Peptides() int {
	return db.idx.Len()
}

// Fragments returns the number of singly charged b and y ions over all
// peptides in the index
func (db *Database) Fragments() int {
	return db.idx.Fragments()
}

// Proteins returns the number of protein accessions, including decoys
func (db *Database) Proteins() int {
	return db.idx.NumProteins()
}

// Parameters returns the resolved configuration
func (db *Database) Parameters() Parameters {
	return db.cfg.parameters()
}
