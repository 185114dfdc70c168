// cmd/ddlgen/ddlgen.go
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"stockroom/internal/domain/product"
)

func mustWrite(path string, content string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		panic(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		panic(err)
	}
}

func main() {
	outDir := filepath.Join("internal", "infra", "database", "migrations")

	outProducts := filepath.Join(outDir, "init_products.sql")

	mustWrite(outProducts, product.ProductsTableDDL)
	fmt.Println("✅ Generated:", outProducts)
}
