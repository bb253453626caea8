package config

import (
	"context"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// ParameterLister is the slice of the SSM API used to read a parameter tree.
type ParameterLister interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// LoadSSM overlays every parameter under SSM_PARAMETER_PATH onto config.
// The last path element is used as key, so /builders/prod/PORT becomes PORT.
// Values already present in the environment win.
func LoadSSM(ctx context.Context, config map[string]string) error {
	prefix := GetString(config, "SSM_PARAMETER_PATH", "")
	if prefix == "" {
		return nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return err
	}

	return MergeParameters(ctx, ssm.NewFromConfig(awsCfg), prefix, config)
}

func MergeParameters(ctx context.Context, client ParameterLister, prefix string, config map[string]string) error {
	input := &ssm.GetParametersByPathInput{
		Path:           aws.String(prefix),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	}

	merged := 0
	paginator := ssm.NewGetParametersByPathPaginator(client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, param := range page.Parameters {
			key := path.Base(aws.ToString(param.Name))
			if _, exists := config[key]; exists {
				continue
			}
			config[key] = aws.ToString(param.Value)
			merged++
		}
	}

	log.Info().Str("path", prefix).Int("parameters", merged).Msg("Loaded configuration from SSM")
	return nil
}
