package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"tasklist/internal/config"
	"tasklist/internal/storage"
)

// migrate copies the task slot from one backend to another, e.g.
//
//	migrate --from file --to sqlite
//	migrate --from sqlite --to postgres --to-dsn "postgres://..."
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ config: ", err)
	}

	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	fromDriver := fs.String("from", cfg.StoreDriver, "Source driver (file|sqlite|mysql|postgres)")
	fromPath := fs.String("from-path", cfg.StorePath, "Source directory for file/sqlite")
	fromDSN := fs.String("from-dsn", cfg.StoreDSN, "Source DSN")
	toDriver := fs.String("to", "sqlite", "Target driver (file|sqlite|mysql|postgres)")
	toPath := fs.String("to-path", cfg.StorePath, "Target directory for file/sqlite")
	toDSN := fs.String("to-dsn", "", "Target DSN")
	slot := fs.String("slot", cfg.StoreSlot, "Slot to copy")
	fs.Parse(os.Args[1:])

	if *fromDriver == *toDriver && *fromPath == *toPath && *fromDSN == *toDSN {
		log.Fatal("❌ source and target are the same backend")
	}

	src, err := storage.Open(*fromDriver, *fromPath, *fromDSN, *slot)
	if err != nil {
		log.Fatal("❌ open source: ", err)
	}
	defer src.Close()

	dst, err := storage.Open(*toDriver, *toPath, *toDSN, *slot)
	if err != nil {
		log.Fatal("❌ open target: ", err)
	}
	defer dst.Close()

	log.Printf("🔄 Copying slot %q: %s → %s", *slot, *fromDriver, *toDriver)
	n, err := storage.Copy(dst, src)
	if errors.Is(err, storage.ErrEmptySlot) {
		log.Println("⚠️ Source slot is empty, nothing to copy")
		return
	}
	if err != nil {
		log.Fatal("❌ copy: ", err)
	}
	log.Printf("🎉 Migration complete: %d tasks copied", n)
}
