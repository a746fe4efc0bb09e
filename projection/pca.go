package projection

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// LinearProjector reduces vectors with principal component analysis.
//
// # Why SVD
//
// PCA finds the directions along which the data varies the most. While
// it can be computed from eigenvectors of the covariance matrix, the
// singular value decomposition of the centered data matrix is
// numerically more stable and never forms X^T * X explicitly:
//
//   - X = U * Σ * V^T
//   - The columns of V are the principal components, ordered by the
//     variance they capture
//   - X * V[:, 0:k] is the k-dimensional projection
//
// The projector is fully deterministic: identical input always produces
// identical output.
type LinearProjector struct{}

// NewLinearProjector creates the PCA backend.
func NewLinearProjector() *LinearProjector {
	return &LinearProjector{}
}

// Name returns the backend's display name.
func (projector *LinearProjector) Name() string { return "pca" }

// Project reduces the vector set to outputDimensions coordinates.
// It returns an error when the input is inconsistent or the SVD cannot
// produce enough components; the caller decides what to do about it.
func (projector *LinearProjector) Project(vectors [][]float32, outputDimensions int) ([][]float64, error) {
	inputDimensions, err := validateConsistentDimensions(vectors)
	if err != nil {
		return nil, err
	}
	if inputDimensions < outputDimensions {
		return nil, fmt.Errorf("cannot project %d input dimensions to %d", inputDimensions, outputDimensions)
	}

	numberOfVectors := len(vectors)
	dataMatrix := buildDataMatrix(vectors, numberOfVectors, inputDimensions)

	// Center each dimension around zero. Without this the first
	// principal component tends to point at the data's centroid instead
	// of capturing the direction of maximum spread.
	subtractColumnMeans(dataMatrix, numberOfVectors, inputDimensions)

	componentMatrix, err := principalComponents(dataMatrix, inputDimensions, outputDimensions)
	if err != nil {
		return nil, err
	}

	// Project the centered data onto the principal subspace:
	// (N × D) · (D × k) = (N × k)
	var projected mat.Dense
	projected.Mul(dataMatrix, componentMatrix)

	coordinates := make([][]float64, numberOfVectors)
	for rowIndex := 0; rowIndex < numberOfVectors; rowIndex++ {
		coordinates[rowIndex] = make([]float64, outputDimensions)
		for columnIndex := 0; columnIndex < outputDimensions; columnIndex++ {
			coordinates[rowIndex][columnIndex] = projected.At(rowIndex, columnIndex)
		}
	}
	return coordinates, nil
}

// buildDataMatrix flattens float32 embedding vectors into a row-major
// gonum Dense matrix of float64 values.
func buildDataMatrix(vectors [][]float32, numberOfVectors, inputDimensions int) *mat.Dense {
	flattened := make([]float64, numberOfVectors*inputDimensions)
	for rowIndex, vector := range vectors {
		for columnIndex, value := range vector {
			flattened[rowIndex*inputDimensions+columnIndex] = float64(value)
		}
	}
	return mat.NewDense(numberOfVectors, inputDimensions, flattened)
}

// subtractColumnMeans centers the matrix in place so every column
// (dimension) has zero mean.
func subtractColumnMeans(dataMatrix *mat.Dense, numberOfVectors, inputDimensions int) {
	for columnIndex := 0; columnIndex < inputDimensions; columnIndex++ {
		columnValues := mat.Col(nil, columnIndex, dataMatrix)
		columnMean := stat.Mean(columnValues, nil)
		for rowIndex := 0; rowIndex < numberOfVectors; rowIndex++ {
			dataMatrix.Set(rowIndex, columnIndex, dataMatrix.At(rowIndex, columnIndex)-columnMean)
		}
	}
}

// principalComponents factorizes the centered data with a thin SVD and
// returns the first outputDimensions right singular vectors as a
// (D × k) matrix.
func principalComponents(centeredData *mat.Dense, inputDimensions, outputDimensions int) (*mat.Dense, error) {
	var decomposition mat.SVD
	if ok := decomposition.Factorize(centeredData, mat.SVDThin); !ok {
		return nil, fmt.Errorf("svd factorization did not converge")
	}

	var rightSingularVectors mat.Dense
	decomposition.VTo(&rightSingularVectors)

	rows, columns := rightSingularVectors.Dims()
	if rows < inputDimensions || columns < outputDimensions {
		return nil, fmt.Errorf("svd produced %d components, need %d", columns, outputDimensions)
	}

	componentMatrix := mat.NewDense(inputDimensions, outputDimensions, nil)
	for dimensionIndex := 0; dimensionIndex < inputDimensions; dimensionIndex++ {
		for componentIndex := 0; componentIndex < outputDimensions; componentIndex++ {
			componentMatrix.Set(dimensionIndex, componentIndex, rightSingularVectors.At(dimensionIndex, componentIndex))
		}
	}
	return componentMatrix, nil
}
