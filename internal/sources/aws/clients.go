// Package aws attests the platform encryption posture of an AWS account:
// encryption at rest across S3, EBS, and RDS, and TLS in transit across
// load balancer listeners. The result populates the storage and network
// sections of a workload descriptor.
//
// It is a descriptor source only. Implementations must use the AWS SDK v2;
// never call the aws CLI.
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	elbsvc "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	rdssvc "github.com/aws/aws-sdk-go-v2/service/rds"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	stssvc "github.com/aws/aws-sdk-go-v2/service/sts"
)

// s3APIClient is the narrow S3 interface used by the collector: bucket
// listing and default-encryption inspection.
type s3APIClient interface {
	ListBuckets(ctx context.Context, params *s3svc.ListBucketsInput, optFns ...func(*s3svc.Options)) (*s3svc.ListBucketsOutput, error)
	GetBucketEncryption(ctx context.Context, params *s3svc.GetBucketEncryptionInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketEncryptionOutput, error)
}

// ec2APIClient is the narrow EC2 interface for EBS volume encryption.
// It embeds DescribeVolumesAPIClient so the SDK paginator can be used directly.
type ec2APIClient interface {
	ec2svc.DescribeVolumesAPIClient
}

// rdsAPIClient is the narrow RDS interface for storage encryption status.
type rdsAPIClient interface {
	rdssvc.DescribeDBInstancesAPIClient
}

// elbAPIClient is the narrow ELBv2 interface for listener protocol checks.
type elbAPIClient interface {
	elbsvc.DescribeLoadBalancersAPIClient
	elbsvc.DescribeListenersAPIClient
}

// stsAPIClient is the narrow STS interface for account identity resolution.
type stsAPIClient interface {
	GetCallerIdentity(ctx context.Context, params *stssvc.GetCallerIdentityInput, optFns ...func(*stssvc.Options)) (*stssvc.GetCallerIdentityOutput, error)
}

// infraClients bundles the AWS service clients used by the collector.
type infraClients struct {
	S3  s3APIClient
	EC2 ec2APIClient
	RDS rdsAPIClient
	ELB elbAPIClient
	STS stsAPIClient
}

// clientFactory creates infraClients from an AWS config.
// Injection point: tests replace this with a function returning fakes.
type clientFactory func(cfg aws.Config) *infraClients

// newDefaultClients creates production AWS SDK clients from the given config.
func newDefaultClients(cfg aws.Config) *infraClients {
	return &infraClients{
		S3:  s3svc.NewFromConfig(cfg),
		EC2: ec2svc.NewFromConfig(cfg),
		RDS: rdssvc.NewFromConfig(cfg),
		ELB: elbsvc.NewFromConfig(cfg),
		STS: stssvc.NewFromConfig(cfg),
	}
}
