// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"log"

	"github.com/spf13/viper"
)

// KmerConfig bounds the k-mer sizes handed to the assembler's multi-k mode
type KmerConfig struct {
	// the smallest k-mer size allowed in a run
	Min int `mapstructure:"min"`

	// the largest k-mer size allowed in a run
	Max int `mapstructure:"max"`

	// Min is lowered to this for short reads
	ShortMin int `mapstructure:"short-min"`

	// reads with an average length under this count as short
	ShortReadLength int `mapstructure:"short-read-length"`

	// how many k-mer sizes the automatic range aims for
	TargetCount int `mapstructure:"target-count"`

	// the fraction of the average read length capping the largest k
	ReadFraction float64 `mapstructure:"read-fraction"`

	// the smallest spacing between successive k values
	MinStep int `mapstructure:"min-step"`
}

// DepthConfig is settings for depth normalization
type DepthConfig struct {
	// subsample only when the measured depth exceeds this multiple of the target
	Guard float64 `mapstructure:"guard"`
}

// ReadConfig is settings for measuring and trimming the input reads
type ReadConfig struct {
	// base quality threshold for the read statistics report
	QualityCutoff int `mapstructure:"quality-cutoff"`

	// adapter FASTA handed to the trimmer's clipping step
	Adapters string `mapstructure:"adapters"`
}

// CorrectionConfig is settings for the read error-correction stage
type CorrectionConfig struct {
	// k-mer size used by the corrector
	Kmer int `mapstructure:"kmer"`

	// upper bound on corrections per read
	MaxPerRead int `mapstructure:"max-per-read"`
}

// CountConfig is settings for k-mer counting during genome-size estimation
type CountConfig struct {
	// k-mer size used by the counter
	Kmer int `mapstructure:"kmer"`

	// k-mers seen fewer times than this are treated as noise
	MinMultiplicity int `mapstructure:"min-multiplicity"`
}

// OverlapConfig is settings for read-pair stitching
type OverlapConfig struct {
	// the minimum overlap between mates for them to be combined
	MinLength int `mapstructure:"min-length"`
}

// ResourceConfig is how thread/memory ceilings are split between a stage's
// primary tool and the IO-bound helper it pipes into
type ResourceConfig struct {
	// share of the RAM ceiling granted to alignment sorting
	SortFraction float64 `mapstructure:"sort-fraction"`

	// per-thread floor for the sorter, in MB
	MinSortMB int `mapstructure:"min-sort-mb"`
}

// OutputConfig is settings for the final output files
type OutputConfig struct {
	// column width of the serialized contig FASTA
	FastaWidth int `mapstructure:"fasta-width"`
}

// Config is the root-level settings struct and is a mix of settings
// available in an optional settings file and those from the command line
type Config struct {
	// k-mer range selection
	Kmer KmerConfig

	// depth normalization
	Depth DepthConfig

	// read measurement and trimming
	Read ReadConfig

	// read error correction
	Correction CorrectionConfig

	// k-mer counting for genome-size estimation
	Count CountConfig

	// read-pair stitching
	Overlap OverlapConfig

	// thread/memory budget split
	Resource ResourceConfig

	// final output serialization
	Output OutputConfig

	// whether to echo tool output to stdout
	Verbose bool
}

// New returns a new Config struct populated by Viper settings
// (built-in defaults, an optional settings file, and bound flags)
func New() *Config {
	viper.SetDefault("kmer.min", 31)
	viper.SetDefault("kmer.max", 127)
	viper.SetDefault("kmer.short-min", 21)
	viper.SetDefault("kmer.short-read-length", 75)
	viper.SetDefault("kmer.target-count", 5)
	viper.SetDefault("kmer.read-fraction", 0.75)
	viper.SetDefault("kmer.min-step", 5)
	viper.SetDefault("depth.guard", 1.1)
	viper.SetDefault("read.quality-cutoff", 3)
	viper.SetDefault("read.adapters", "adapters.fa")
	viper.SetDefault("correction.kmer", 32)
	viper.SetDefault("correction.max-per-read", 1)
	viper.SetDefault("count.kmer", 25)
	viper.SetDefault("count.min-multiplicity", 3)
	viper.SetDefault("overlap.min-length", 20)
	viper.SetDefault("resource.sort-fraction", 0.25)
	viper.SetDefault("resource.min-sort-mb", 1024)
	viper.SetDefault("output.fasta-width", 60)

	// an optional settings file overriding the defaults above
	if settings := viper.GetString("settings"); settings != "" {
		viper.SetConfigFile(settings)
		if err := viper.ReadInConfig(); err != nil {
			log.Fatalf("unable to read settings file %s: %v", settings, err)
		}
	}

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		log.Fatalf("unable to decode settings into struct: %v", err)
	}

	return &c
}
