package main

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Verbose   bool
	Tokens    bool
	OutDir    string
	KeepGoing bool
}

func removeExtension(filePath string) string {
	extension := filepath.Ext(filePath)
	return filePath[:len(filePath)-len(extension)]
}

func getClassName(filePath string) string {
	return removeExtension(filepath.Base(filePath))
}

func getOutputPath(filePath, outDir, suffix string) string {
	base := removeExtension(filePath)
	if outDir != "" {
		base = filepath.Join(outDir, getClassName(filePath))
	}
	return base + suffix
}

// compileFile compiles one unit and returns the name of the class it declares.
// Nothing is flushed to w when compilation fails.
func compileFile(r io.Reader, w io.Writer, logger logrus.FieldLogger) (string, error) {
	tokenizer := NewTokenizer(r)
	writer := NewVMWriter(w)

	compiler := NewJackCompiler(tokenizer, writer, logger)
	if err := compiler.Compile(); err != nil {
		return compiler.ClassName(), err
	}
	return compiler.ClassName(), writer.Flush()
}

func writeTokens(r io.Reader, w io.Writer) error {
	return NewTokenXMLWriter(w).WriteTokens(NewTokenizer(r))
}

func withFiles(inputPath, outputPath string, f func(io.Reader, io.Writer) error) (err error) {
	handle, err := os.Open(inputPath)
	if err != nil {
		return errors.Wrapf(err, "could not open file %q for reading", inputPath)
	}
	defer handle.Close()

	output, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "could not open output file %q for writing", outputPath)
	}

	err = f(handle, output)
	if closeErr := output.Close(); err == nil && closeErr != nil {
		err = errors.Wrapf(closeErr, "could not close output file %q", outputPath)
	}
	if err != nil {
		// A failed unit leaves no partial output behind
		_ = os.Remove(outputPath)
	}
	return err
}

func processFile(path string, cfg Config, logger logrus.FieldLogger) (outputPath string, err error) {
	log := logger.WithField("file", path)

	if cfg.Tokens {
		tokensPath := getOutputPath(path, cfg.OutDir, "T.xml")
		if err := withFiles(path, tokensPath, writeTokens); err != nil {
			return tokensPath, err
		}
		log.Infof("Saved tokens as %q", tokensPath)
	}

	outputPath = getOutputPath(path, cfg.OutDir, ".vm")
	err = withFiles(path, outputPath, func(r io.Reader, w io.Writer) error {
		className, err := compileFile(r, w, log)
		if err == nil && className != getClassName(path) {
			log.Warnf("Class %q declared in file named %q", className, filepath.Base(path))
		}
		return err
	})
	return outputPath, err
}

func collectFiles(fileOrDir string) (files []string, err error) {
	fileOrDirStat, err := os.Stat(fileOrDir)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot stat file/dir %q", fileOrDir)
	}

	if !fileOrDirStat.IsDir() {
		return []string{fileOrDir}, nil
	}

	dirEntries, err := os.ReadDir(fileOrDir)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open directory %q", fileOrDir)
	}
	for _, entry := range dirEntries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".jack" {
			continue
		}
		files = append(files, filepath.Join(fileOrDir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// run compiles every unit found at target. Units are independent; with
// KeepGoing a failed unit does not stop the remaining ones.
func run(cfg Config, target string, logger logrus.FieldLogger) error {
	files, err := collectFiles(target)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.Errorf("no .jack files found in %q", target)
	}
	if cfg.OutDir != "" {
		if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
			return errors.Wrapf(err, "could not create output directory %q", cfg.OutDir)
		}
	}

	failed := 0
	for _, file := range files {
		logger.Infof("Compiling file %q", file)
		outputPath, err := processFile(file, cfg, logger)
		if err != nil {
			failed++
			logger.WithError(err).Errorf("Failed to compile %q", file)
			if !cfg.KeepGoing {
				return errors.Wrapf(err, "compile %q", file)
			}
			continue
		}
		logger.Infof("Saved as %q", outputPath)
	}

	if failed > 0 {
		return errors.Errorf("%d of %d files failed to compile", failed, len(files))
	}
	return nil
}
