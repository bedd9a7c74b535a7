// Command flinng builds, queries, and inspects a DenseAngular FLINNG index
// from the command line, reading vectors as CSV (one comma-separated
// vector per line).
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/liliang-cn/flinng"
)

var (
	dim            int
	numRows        int
	cellsPerRow    int
	numHashTables  int
	hashesPerTable int
	seed           int64
)

var rootCmd = &cobra.Command{
	Use:   "flinng",
	Short: "CLI tool for FLINNG approximate nearest-neighbor indexes",
	Long:  `A command-line interface for building, querying, and inspecting FLINNG indexes.`,
}

var buildCmd = &cobra.Command{
	Use:   "build <vectors.csv> <index.bin>",
	Short: "Build a DenseAngular index from a CSV file of vectors",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		vectors, err := readVectorsCSV(args[0], dim)
		if err != nil {
			return err
		}

		b := flinng.DefaultBuilder(dim)
		b.NumRows = uint32(numRows)
		b.CellsPerRow = uint32(cellsPerRow)
		b.NumHashTables = numHashTables
		b.HashesPerTable = hashesPerTable
		b.Seed = seed

		idx, err := flinng.NewDenseAngular(b)
		if err != nil {
			return fmt.Errorf("build index: %w", err)
		}

		ctx := context.Background()
		flat := make([]float32, 0, len(vectors)*dim)
		for _, v := range vectors {
			flat = append(flat, v...)
		}
		if err := idx.AddPoints(ctx, flat, len(vectors)); err != nil {
			return fmt.Errorf("add points: %w", err)
		}
		idx.PrepareForQueries()

		if err := idx.Write(args[1]); err != nil {
			return fmt.Errorf("write index: %w", err)
		}

		fmt.Printf("Built index with %d vectors (dim=%d) at %s\n", len(vectors), dim, args[1])
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <index.bin> <vectors.csv>",
	Short: "Add vectors from a CSV file to an existing index, in place",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := flinng.ReadDenseAngular(args[0])
		if err != nil {
			return fmt.Errorf("read index: %w", err)
		}

		vectors, err := readVectorsCSV(args[1], dim)
		if err != nil {
			return err
		}

		ctx := context.Background()
		flat := make([]float32, 0, len(vectors)*dim)
		for _, v := range vectors {
			flat = append(flat, v...)
		}
		if err := idx.AddPoints(ctx, flat, len(vectors)); err != nil {
			return fmt.Errorf("add points: %w", err)
		}

		if err := idx.Write(args[0]); err != nil {
			return fmt.Errorf("write index: %w", err)
		}

		fmt.Printf("Added %d vectors; index now has %d total\n", len(vectors), idx.NumPointsAdded())
		return nil
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <index.bin> <vector>",
	Short: "Query the index for the top-K nearest point ids",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := flinng.ReadDenseAngular(args[0])
		if err != nil {
			return fmt.Errorf("read index: %w", err)
		}

		query, err := parseVector(args[1])
		if err != nil {
			return err
		}

		topK, _ := cmd.Flags().GetInt("top-k")
		results, err := idx.Query(context.Background(), query, topK)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}

		outputJSON, _ := cmd.Flags().GetBool("json")
		if outputJSON {
			data, _ := json.MarshalIndent(results, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		fmt.Printf("Top-%d results:\n", topK)
		for i, id := range results {
			fmt.Printf("  %d. %d\n", i+1, id)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <index.bin>",
	Short: "Display index statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := flinng.ReadDenseAngular(args[0])
		if err != nil {
			return fmt.Errorf("read index: %w", err)
		}

		outputJSON, _ := cmd.Flags().GetBool("json")
		stats := idx.Stats()
		if outputJSON {
			data, _ := json.MarshalIndent(stats, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		for k, v := range stats {
			fmt.Printf("  %s: %v\n", k, v)
		}
		return nil
	},
}

func parseVector(s string) ([]float32, error) {
	parts := strings.Split(s, ",")
	vec := make([]float32, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", p, err)
		}
		vec[i] = float32(v)
	}
	return vec, nil
}

func readVectorsCSV(path string, dim int) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var vectors [][]float32
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		v, err := parseVector(line)
		if err != nil {
			return nil, err
		}
		if len(v) != dim {
			return nil, fmt.Errorf("%s: vector has %d components, want %d", path, len(v), dim)
		}
		vectors = append(vectors, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return vectors, nil
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&dim, "dim", "d", 0, "Vector dimension")
	rootCmd.MarkPersistentFlagRequired("dim")

	buildCmd.Flags().IntVar(&numRows, "rows", 3, "Number of FlinngIndex rows")
	buildCmd.Flags().IntVar(&cellsPerRow, "cells", 4096, "Cells per row")
	buildCmd.Flags().IntVar(&numHashTables, "tables", 512, "Number of hash tables")
	buildCmd.Flags().IntVar(&hashesPerTable, "hashes-per-table", 14, "SRP sub-hashes per table")
	buildCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 = random)")

	queryCmd.Flags().Int("top-k", 10, "Number of results")
	queryCmd.Flags().Bool("json", false, "Output as JSON")

	statsCmd.Flags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(buildCmd, addCmd, queryCmd, statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
