package aws

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
)

// S3 holds the connection settings shared by the S3 backed components.
type S3 struct {
	Region         string
	Endpoint       string
	ForcePathStyle bool
}

func (s S3) Session() (*session.Session, error) {
	awsConfig := &aws.Config{
		Region:           aws.String(s.Region),
		S3ForcePathStyle: aws.Bool(s.ForcePathStyle),
	}

	if s.Endpoint != "" {
		awsConfig.Endpoint = aws.String(s.Endpoint)
	}

	return session.NewSession(awsConfig)
}
