package cache

// Builder can build caches.
type Builder struct {
	name         string
	totalSize    int
	blockSize    int
	placement    Placement
	writePolicy  WritePolicy
	addressWidth int
}

// MakeBuilder creates a new builder with a 16-byte direct-mapped write-back
// cache of 4-byte blocks.
func MakeBuilder() Builder {
	return Builder{
		name:        "Cache",
		totalSize:   16,
		blockSize:   4,
		placement:   DirectMapped,
		writePolicy: WriteBack,
	}
}

// WithName sets the name reported by the cache to its hooks.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithTotalSize sets the capacity of the cache in bytes.
func (b Builder) WithTotalSize(totalSize int) Builder {
	b.totalSize = totalSize
	return b
}

// WithBlockSize sets the size of a block in bytes.
func (b Builder) WithBlockSize(blockSize int) Builder {
	b.blockSize = blockSize
	return b
}

// WithPlacement sets the placement strategy.
func (b Builder) WithPlacement(placement Placement) Builder {
	b.placement = placement
	return b
}

// WithWritePolicy sets the write policy.
func (b Builder) WithWritePolicy(writePolicy WritePolicy) Builder {
	b.writePolicy = writePolicy
	return b
}

// WithAddressWidth sets the address width used to report the tag bits.
func (b Builder) WithAddressWidth(addressWidth int) Builder {
	b.addressWidth = addressWidth
	return b
}

// WithConfig copies all the fields of a Config into the builder.
func (b Builder) WithConfig(config Config) Builder {
	b.totalSize = config.TotalSize
	b.blockSize = config.BlockSize
	b.placement = config.Placement
	b.writePolicy = config.WritePolicy
	b.addressWidth = config.AddressWidth

	return b
}

// Config returns the configuration the builder would build.
func (b Builder) Config() Config {
	return Config{
		TotalSize:    b.totalSize,
		BlockSize:    b.blockSize,
		Placement:    b.placement,
		WritePolicy:  b.writePolicy,
		AddressWidth: b.addressWidth,
	}
}

// Build builds a cache. It returns a *ConfigurationError if the
// configuration is invalid.
func (b Builder) Build() (*Cache, error) {
	config := b.Config()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Cache{
		name:   b.name,
		config: config,
	}
	c.engine = newEngine(config)

	return c, nil
}

// New creates a cache with the given configuration.
func New(config Config) (*Cache, error) {
	return MakeBuilder().WithConfig(config).Build()
}
