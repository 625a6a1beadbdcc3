// Copyright 2021 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/go-viper/mapstructure/v2"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

const (
	StoragePOSIX = "posix"
	StorageS3    = "s3"
	StorageGCS   = "gcs"
	StorageAzure = "azure"
)

// Config is the configuration for toyrec.
type Config struct {
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Recommend RecommendConfig `mapstructure:"recommend"`
}

// DatasetConfig is the configuration of the generated rating matrix.
type DatasetConfig struct {
	NumItems      int     `mapstructure:"num_items" validate:"gte=0"`
	NumUsers      int     `mapstructure:"num_users" validate:"gte=0"`
	ItemPrefix    string  `mapstructure:"item_prefix" validate:"required"`
	UserPrefix    string  `mapstructure:"user_prefix" validate:"required"`
	MissingRate   float64 `mapstructure:"missing_rate" validate:"gte=0,lte=1"`
	ItemBasedFile string  `mapstructure:"item_based_file" validate:"required"`
	UserBasedFile string  `mapstructure:"user_based_file" validate:"required,nefield=ItemBasedFile"`
}

// StorageConfig is the configuration of the place datasets are written to.
type StorageConfig struct {
	Type      string          `mapstructure:"type" validate:"oneof=posix s3 gcs azure"`
	OutputDir string          `mapstructure:"output_dir"`
	Timeout   time.Duration   `mapstructure:"timeout" validate:"gte=0"`
	S3        S3Config        `mapstructure:"s3"`
	GCS       GCSConfig       `mapstructure:"gcs"`
	Azure     AzureBlobConfig `mapstructure:"azure"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
}

type GCSConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
}

type AzureBlobConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
	AccountName      string `mapstructure:"account_name"`
	AccountKey       string `mapstructure:"account_key"`
	Endpoint         string `mapstructure:"endpoint"`
	Container        string `mapstructure:"container"`
	Prefix           string `mapstructure:"prefix"`
}

// RecommendConfig is the configuration of the neighborhood recommenders.
type RecommendConfig struct {
	SimilarityCache string `mapstructure:"similarity_cache" validate:"required"`
	Jobs            int    `mapstructure:"jobs" validate:"gte=1"`
	TopN            int    `mapstructure:"top_n" validate:"gte=1"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			NumItems:      300,
			NumUsers:      600,
			ItemPrefix:    "Item",
			UserPrefix:    "User",
			MissingRate:   0.4,
			ItemBasedFile: "data_item_based.csv",
			UserBasedFile: "data_user_based.csv",
		},
		Storage: StorageConfig{
			Type:      StoragePOSIX,
			OutputDir: "datasets",
		},
		Recommend: RecommendConfig{
			SimilarityCache: "cache/item_similarities.csv",
			Jobs:            1,
			TopN:            10,
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [dataset]
	v.SetDefault("dataset.num_items", defaultConfig.Dataset.NumItems)
	v.SetDefault("dataset.num_users", defaultConfig.Dataset.NumUsers)
	v.SetDefault("dataset.item_prefix", defaultConfig.Dataset.ItemPrefix)
	v.SetDefault("dataset.user_prefix", defaultConfig.Dataset.UserPrefix)
	v.SetDefault("dataset.missing_rate", defaultConfig.Dataset.MissingRate)
	v.SetDefault("dataset.item_based_file", defaultConfig.Dataset.ItemBasedFile)
	v.SetDefault("dataset.user_based_file", defaultConfig.Dataset.UserBasedFile)
	// [storage]
	v.SetDefault("storage.type", defaultConfig.Storage.Type)
	v.SetDefault("storage.output_dir", defaultConfig.Storage.OutputDir)
	v.SetDefault("storage.timeout", defaultConfig.Storage.Timeout)
	// [recommend]
	v.SetDefault("recommend.similarity_cache", defaultConfig.Recommend.SimilarityCache)
	v.SetDefault("recommend.jobs", defaultConfig.Recommend.Jobs)
	v.SetDefault("recommend.top_n", defaultConfig.Recommend.TopN)
}

type configBinding struct {
	key string
	env string
}

var bindings = []configBinding{
	{"dataset.num_items", "TOYREC_NUM_ITEMS"},
	{"dataset.num_users", "TOYREC_NUM_USERS"},
	{"dataset.item_prefix", "TOYREC_ITEM_PREFIX"},
	{"dataset.user_prefix", "TOYREC_USER_PREFIX"},
	{"dataset.missing_rate", "TOYREC_MISSING_RATE"},
	{"dataset.item_based_file", "TOYREC_ITEM_BASED_FILE"},
	{"dataset.user_based_file", "TOYREC_USER_BASED_FILE"},
	{"storage.type", "TOYREC_STORAGE_TYPE"},
	{"storage.output_dir", "TOYREC_OUTPUT_DIR"},
	{"storage.timeout", "TOYREC_STORAGE_TIMEOUT"},
	{"storage.s3.endpoint", "TOYREC_S3_ENDPOINT"},
	{"storage.s3.access_key_id", "TOYREC_S3_ACCESS_KEY_ID"},
	{"storage.s3.secret_access_key", "TOYREC_S3_SECRET_ACCESS_KEY"},
	{"storage.s3.bucket", "TOYREC_S3_BUCKET"},
	{"storage.gcs.credentials_file", "TOYREC_GCS_CREDENTIALS_FILE"},
	{"storage.gcs.bucket", "TOYREC_GCS_BUCKET"},
	{"storage.azure.connection_string", "TOYREC_AZURE_CONNECTION_STRING"},
	{"storage.azure.account_name", "TOYREC_AZURE_ACCOUNT_NAME"},
	{"storage.azure.account_key", "TOYREC_AZURE_ACCOUNT_KEY"},
	{"storage.azure.container", "TOYREC_AZURE_CONTAINER"},
	{"recommend.jobs", "TOYREC_RECOMMEND_JOBS"},
}

func bindEnv(v *viper.Viper) error {
	for _, binding := range bindings {
		if err := v.BindEnv(binding.key, binding.env); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// LoadConfig loads configuration from a TOML or YAML file. An empty path loads defaults.
// Environment variables override both.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if err := bindEnv(v); err != nil {
		return nil, errors.Trace(err)
	}
	var conf Config
	if err := v.Unmarshal(&conf, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

func (config *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterStructValidation(validateStorage, StorageConfig{})
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return errors.Trace(err)
	}
	err := validate.Struct(config)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			messages := make([]string, 0, len(validationErrors))
			for _, e := range validationErrors {
				messages = append(messages, e.Translate(trans))
			}
			return errors.NotValidf("config (%s)", strings.Join(messages, "; "))
		}
		return errors.Trace(err)
	}
	return nil
}

// validateStorage requires the location settings of the selected backend.
func validateStorage(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(StorageConfig)
	switch cfg.Type {
	case StoragePOSIX:
		if cfg.OutputDir == "" {
			sl.ReportError(cfg.OutputDir, "output_dir", "OutputDir", "required", "")
		}
	case StorageS3:
		if cfg.S3.Endpoint == "" {
			sl.ReportError(cfg.S3.Endpoint, "s3.endpoint", "Endpoint", "required", "")
		}
		if cfg.S3.Bucket == "" {
			sl.ReportError(cfg.S3.Bucket, "s3.bucket", "Bucket", "required", "")
		}
	case StorageGCS:
		if cfg.GCS.Bucket == "" {
			sl.ReportError(cfg.GCS.Bucket, "gcs.bucket", "Bucket", "required", "")
		}
	case StorageAzure:
		if cfg.Azure.Container == "" {
			sl.ReportError(cfg.Azure.Container, "azure.container", "Container", "required", "")
		}
	}
}
