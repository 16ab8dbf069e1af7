// Package main provides the entry point for the autoreport CLI.
//
// autoreport reads per-model evaluation result files and writes an HTML
// report comparing the models: accuracy, misidentified images, the images
// every model got wrong, and one full results table per model.
//
// Usage:
//
//	autoreport VGG19_results.csv ResNet50_results.csv
//
// See --help for all available commands.
package main

// main is the entry point for autoreport.
func main() {
	Execute()
}
