// Command enginectl is a manual-test harness wiring the block device,
// buffer pool, record store, and B+ tree index together end to end. It is
// not part of the storage engine's contract, only a demo entry point in
// the spirit of a teaching assignment's driver program.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/arcdb/arcdb/internal/block"
	"github.com/arcdb/arcdb/internal/btree"
	"github.com/arcdb/arcdb/internal/bufferpool"
	"github.com/arcdb/arcdb/internal/config"
	"github.com/arcdb/arcdb/internal/heap"
	"github.com/arcdb/arcdb/internal/predicate"
	"github.com/arcdb/arcdb/internal/record"
	"github.com/arcdb/arcdb/internal/value"
)

func main() {
	configPath := flag.String("config", "", "path to engine.yaml")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "usage: enginectl -config engine.yaml")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("run", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	strategy, err := cfg.BufferPoolStrategy()
	if err != nil {
		return err
	}

	file, err := block.Create(cfg.Storage.TableFile)
	if err != nil {
		return err
	}
	defer file.Close()

	pool, err := bufferpool.Init(file, cfg.BufferPool.Frames, strategy)
	if err != nil {
		return err
	}

	schema, err := record.NewSchema([]record.Attribute{
		{Name: "id", Type: value.Int},
		{Name: "name", Type: value.String, Length: 16},
	}, []int{0})
	if err != nil {
		return err
	}

	table, err := heap.CreateTable(pool, schema)
	if err != nil {
		return err
	}

	indexFile, err := block.Create(cfg.Storage.IndexFile)
	if err != nil {
		return err
	}
	defer indexFile.Close()

	idx, err := btree.Create(indexFile, value.Int, cfg.Index.Fanout)
	if err != nil {
		return err
	}

	for i := int32(0); i < 5; i++ {
		r, err := record.NewRecord(schema, []value.Value{value.NewInt(i), value.NewStringS(fmt.Sprintf("row-%d", i))})
		if err != nil {
			return err
		}
		rid, err := table.InsertRecord(r)
		if err != nil {
			return err
		}
		if err := idx.Insert(value.NewInt(i), rid); err != nil {
			return err
		}
		slog.Info("inserted", "rid", rid.String())
	}

	if rid, err := idx.Find(value.NewInt(2)); err == nil {
		rec, err := table.GetRecord(rid)
		if err != nil {
			return err
		}
		slog.Info("indexed lookup", "key", 2, "rid", rid.String(), "name", rec.Values[1].String())
	}

	scanner := table.Scan(predicate.True)
	defer scanner.Close()
	for {
		rid, rec, ok, err := scanner.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		slog.Info("scanned", "rid", rid.String(), "id", rec.Values[0].Int(), "name", rec.Values[1].String())
	}

	if err := idx.Shutdown(); err != nil {
		return err
	}
	if err := pool.Shutdown(); err != nil {
		return err
	}
	slog.Info("done", "reads", pool.Reads(), "writes", pool.Writes(), "tuples", table.TupleCount(), "indexEntries", idx.NumEntries())
	return nil
}
