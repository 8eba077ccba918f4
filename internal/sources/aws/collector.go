package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	elbsvc "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	rdssvc "github.com/aws/aws-sdk-go-v2/service/rds"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	stssvc "github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/shayshab/workload-compliance/internal/models"
)

// InfrastructureState is the collected encryption posture of one account
// and region. The aggregate flags follow all-or-nothing semantics: a single
// unencrypted store or plaintext listener flips the corresponding flag.
// When no resource of a class exists there is nothing unencrypted to flag
// and the flag stays true; the per-resource lists and counts make a vacuous
// pass visible to the caller.
type InfrastructureState struct {
	AccountID string `json:"account_id"`
	Region    string `json:"region"`

	Storage models.StorageConfig `json:"storage"`
	Network models.NetworkConfig `json:"network"`

	BucketCount     int `json:"bucket_count"`
	VolumeCount     int `json:"volume_count"`
	DBInstanceCount int `json:"db_instance_count"`
	ListenerCount   int `json:"listener_count"`

	UnencryptedBuckets     []string `json:"unencrypted_buckets,omitempty"`
	UnencryptedVolumes     []string `json:"unencrypted_volumes,omitempty"`
	UnencryptedDBInstances []string `json:"unencrypted_db_instances,omitempty"`
	PlaintextListeners     []string `json:"plaintext_listeners,omitempty"`
}

// Fragment returns the descriptor overlay carrying the collected storage
// and network sections, for merging into an evaluation subject.
func (s *InfrastructureState) Fragment() *models.WorkloadDescriptor {
	storage := s.Storage
	network := s.Network
	return &models.WorkloadDescriptor{
		Storage: &storage,
		Network: &network,
	}
}

// Collector collects infrastructure encryption state from an AWS account.
type Collector interface {
	Collect(ctx context.Context, profile, region string) (*InfrastructureState, error)
}

// DefaultCollector is the production Collector backed by the AWS SDK v2 and
// the standard shared config files (~/.aws/config, ~/.aws/credentials).
//
// Inject a custom factory via NewDefaultCollectorWithFactory to replace
// real SDK clients with fakes in unit tests.
type DefaultCollector struct {
	factory clientFactory
}

// NewDefaultCollector returns a collector backed by the real AWS SDK.
func NewDefaultCollector() *DefaultCollector {
	return &DefaultCollector{factory: newDefaultClients}
}

// NewDefaultCollectorWithFactory returns a collector that uses f to create
// its service clients. Pass a fake factory in tests.
func NewDefaultCollectorWithFactory(f clientFactory) *DefaultCollector {
	return &DefaultCollector{factory: f}
}

// Collect loads the named profile (empty = default), resolves the account
// via STS, and inspects S3 buckets, EBS volumes, RDS instances, and ELBv2
// listeners. region overrides the profile's home region when non-empty.
func (c *DefaultCollector) Collect(ctx context.Context, profile, region string) (*InfrastructureState, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	clients := c.factory(cfg)

	identity, err := clients.STS.GetCallerIdentity(ctx, &stssvc.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("resolve AWS account: %w", err)
	}

	state := &InfrastructureState{
		AccountID: aws.ToString(identity.Account),
		Region:    cfg.Region,
	}
	if err := collectStorage(ctx, clients, state); err != nil {
		return nil, err
	}
	if err := collectNetwork(ctx, clients, state); err != nil {
		return nil, err
	}
	return state, nil
}

// collectStorage fills the at-rest encryption posture from S3, EBS, and RDS.
func collectStorage(ctx context.Context, clients *infraClients, state *InfrastructureState) error {
	buckets, err := clients.S3.ListBuckets(ctx, &s3svc.ListBucketsInput{})
	if err != nil {
		return fmt.Errorf("list S3 buckets: %w", err)
	}
	for _, b := range buckets.Buckets {
		name := aws.ToString(b.Name)
		state.BucketCount++
		if !bucketEncrypted(ctx, clients.S3, name) {
			state.UnencryptedBuckets = append(state.UnencryptedBuckets, name)
		}
	}

	volumes := ec2svc.NewDescribeVolumesPaginator(clients.EC2, &ec2svc.DescribeVolumesInput{})
	for volumes.HasMorePages() {
		page, err := volumes.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("describe EBS volumes: %w", err)
		}
		for _, v := range page.Volumes {
			state.VolumeCount++
			if !aws.ToBool(v.Encrypted) {
				state.UnencryptedVolumes = append(state.UnencryptedVolumes, aws.ToString(v.VolumeId))
			}
		}
	}

	instances := rdssvc.NewDescribeDBInstancesPaginator(clients.RDS, &rdssvc.DescribeDBInstancesInput{})
	for instances.HasMorePages() {
		page, err := instances.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("describe RDS instances: %w", err)
		}
		for _, db := range page.DBInstances {
			state.DBInstanceCount++
			if !aws.ToBool(db.StorageEncrypted) {
				state.UnencryptedDBInstances = append(state.UnencryptedDBInstances, aws.ToString(db.DBInstanceIdentifier))
			}
		}
	}

	state.Storage.EncryptionAtRest = len(state.UnencryptedBuckets) == 0 &&
		len(state.UnencryptedVolumes) == 0 &&
		len(state.UnencryptedDBInstances) == 0
	return nil
}

// bucketEncrypted returns true when GetBucketEncryption returns a valid
// server-side encryption configuration for the bucket. A missing
// configuration or any other error is treated as "encryption not
// configured".
func bucketEncrypted(ctx context.Context, client s3APIClient, name string) bool {
	_, err := client.GetBucketEncryption(ctx, &s3svc.GetBucketEncryptionInput{
		Bucket: aws.String(name),
	})
	return err == nil
}

// collectNetwork fills the in-transit posture from ELBv2 listeners: every
// listener must terminate TLS (HTTPS or TLS protocol).
func collectNetwork(ctx context.Context, clients *infraClients, state *InfrastructureState) error {
	lbs := elbsvc.NewDescribeLoadBalancersPaginator(clients.ELB, &elbsvc.DescribeLoadBalancersInput{})
	for lbs.HasMorePages() {
		page, err := lbs.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("describe load balancers: %w", err)
		}
		for _, lb := range page.LoadBalancers {
			arn := aws.ToString(lb.LoadBalancerArn)
			listeners := elbsvc.NewDescribeListenersPaginator(clients.ELB, &elbsvc.DescribeListenersInput{
				LoadBalancerArn: aws.String(arn),
			})
			for listeners.HasMorePages() {
				lp, err := listeners.NextPage(ctx)
				if err != nil {
					return fmt.Errorf("describe listeners for %q: %w", aws.ToString(lb.LoadBalancerName), err)
				}
				for _, l := range lp.Listeners {
					state.ListenerCount++
					if !listenerSecure(l.Protocol) {
						state.PlaintextListeners = append(state.PlaintextListeners, fmt.Sprintf(
							"%s:%d (%s)", aws.ToString(lb.LoadBalancerName), aws.ToInt32(l.Port), l.Protocol,
						))
					}
				}
			}
		}
	}

	state.Network.TLSInTransit = len(state.PlaintextListeners) == 0
	return nil
}

// listenerSecure reports whether the listener protocol terminates TLS.
func listenerSecure(p elbtypes.ProtocolEnum) bool {
	return p == elbtypes.ProtocolEnumHttps || p == elbtypes.ProtocolEnumTls
}

// ResolveAccount loads the named profile (empty = default) and resolves its
// account ID via STS. Used by preflight checks that need to verify
// credentials without running a full collection.
func ResolveAccount(ctx context.Context, profile string) (string, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("load AWS config: %w", err)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	out, err := stssvc.NewFromConfig(cfg).GetCallerIdentity(ctx, &stssvc.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("STS GetCallerIdentity: %w", err)
	}
	if out.Account == nil {
		return "", fmt.Errorf("STS GetCallerIdentity returned nil account")
	}
	return aws.ToString(out.Account), nil
}
