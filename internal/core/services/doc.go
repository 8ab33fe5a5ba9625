// Package services implements the driving port interfaces.
// Services contain the pipeline logic: ingestion (chunk, embed, upsert)
// and answering (embed, retrieve, generate), plus the registry and
// settings orchestration around them. All external capabilities are
// reached through driven ports.
package services
