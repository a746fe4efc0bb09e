// Package qdrant provides a gRPC client for persisting the museum's
// embedding collection in a Qdrant vector database. Sessions are useful
// without it, but with persistence enabled the exhibit survives
// restarts and can be shared between machines.
package qdrant

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/lirad/dl-vector-museum-of-words/vecmath"
)

// scrollPageSize is how many points each scroll request fetches.
const scrollPageSize = 256

// Client wraps gRPC connections to a Qdrant instance and scopes all
// operations to a single collection.
type Client struct {
	connection        *grpc.ClientConn
	pointsClient      pb.PointsClient
	collectionsClient pb.CollectionsClient
	collectionName    string
	vectorSize        uint64
}

// Point is a persisted embedding with its identity and source text.
type Point struct {
	ID     string
	Text   string
	Vector []float32
}

// NewClient connects to the Qdrant server at the given address and
// ensures the target collection exists, creating it with cosine
// distance if necessary.
func NewClient(address, collectionName string, vectorSize uint64) (*Client, error) {
	connection, connectError := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if connectError != nil {
		return nil, fmt.Errorf("connect to qdrant: %w", connectError)
	}

	client := &Client{
		connection:        connection,
		pointsClient:      pb.NewPointsClient(connection),
		collectionsClient: pb.NewCollectionsClient(connection),
		collectionName:    collectionName,
		vectorSize:        vectorSize,
	}

	if ensureError := client.ensureCollectionExists(context.Background()); ensureError != nil {
		connection.Close()
		return nil, ensureError
	}

	return client, nil
}

// ensureCollectionExists creates the collection when it is missing.
// Existing collections are left untouched, whatever their settings.
func (client *Client) ensureCollectionExists(ctx context.Context) error {
	_, getError := client.collectionsClient.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: client.collectionName,
	})
	if getError == nil {
		return nil
	}

	_, createError := client.collectionsClient.Create(ctx, &pb.CreateCollection{
		CollectionName: client.collectionName,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     client.vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if createError != nil {
		return fmt.Errorf("create collection: %w", createError)
	}

	return nil
}

// Upsert inserts or updates one embedding. The vector is normalized to
// unit length before storage so everything read back satisfies the
// collection-wide invariant.
func (client *Client) Upsert(ctx context.Context, pointID string, text string, vector []float32) error {
	pointToUpsert := &pb.PointStruct{
		Id: &pb.PointId{
			PointIdOptions: &pb.PointId_Uuid{Uuid: pointID},
		},
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{Data: vecmath.Normalize(vector)},
			},
		},
		Payload: map[string]*pb.Value{
			"text": {Kind: &pb.Value_StringValue{StringValue: text}},
		},
	}

	_, upsertError := client.pointsClient.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: client.collectionName,
		Points:         []*pb.PointStruct{pointToUpsert},
	})
	return upsertError
}

// Count returns the number of points currently in the collection.
func (client *Client) Count(ctx context.Context) (uint64, error) {
	countResponse, countError := client.pointsClient.Count(ctx, &pb.CountPoints{
		CollectionName: client.collectionName,
	})
	if countError != nil {
		return 0, fmt.Errorf("count points: %w", countError)
	}
	return countResponse.GetResult().GetCount(), nil
}

// GetAll retrieves every point in the collection by scrolling through
// it page by page, so collections larger than one response still come
// back complete.
func (client *Client) GetAll(ctx context.Context) ([]Point, error) {
	var points []Point
	var nextPageOffset *pb.PointId

	for {
		scrollResponse, scrollError := client.pointsClient.Scroll(ctx, &pb.ScrollPoints{
			CollectionName: client.collectionName,
			WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
			WithVectors:    &pb.WithVectorsSelector{SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true}},
			Limit:          pb.PtrOf(uint32(scrollPageSize)),
			Offset:         nextPageOffset,
		})
		if scrollError != nil {
			return nil, fmt.Errorf("scroll points: %w", scrollError)
		}

		for _, retrievedPoint := range scrollResponse.Result {
			points = append(points, pointFromRecord(retrievedPoint))
		}

		nextPageOffset = scrollResponse.NextPageOffset
		if nextPageOffset == nil || len(scrollResponse.Result) == 0 {
			break
		}
	}

	return points, nil
}

// pointFromRecord converts a Qdrant record into the client's Point
// shape, tolerating missing payload or vector data.
func pointFromRecord(record *pb.RetrievedPoint) Point {
	var pointID string
	if recordUUID := record.Id.GetUuid(); recordUUID != "" {
		pointID = recordUUID
	}

	var textContent string
	if textPayload, exists := record.Payload["text"]; exists {
		textContent = textPayload.GetStringValue()
	}

	var embeddingVector []float32
	if vectorData := record.Vectors.GetVector(); vectorData != nil {
		embeddingVector = vectorData.Data
	}

	return Point{
		ID:     pointID,
		Text:   textContent,
		Vector: embeddingVector,
	}
}

// Delete removes a point from the collection by its UUID.
func (client *Client) Delete(ctx context.Context, pointID string) error {
	pointSelector := &pb.PointsSelector{
		PointsSelectorOneOf: &pb.PointsSelector_Points{
			Points: &pb.PointsIdsList{
				Ids: []*pb.PointId{
					{PointIdOptions: &pb.PointId_Uuid{Uuid: pointID}},
				},
			},
		},
	}

	_, deleteError := client.pointsClient.Delete(ctx, &pb.DeletePoints{
		CollectionName: client.collectionName,
		Points:         pointSelector,
	})
	return deleteError
}

// Close terminates the gRPC connection to the Qdrant server.
func (client *Client) Close() error {
	return client.connection.Close()
}
