package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"
)

// In builds an {$in: values} condition
func In[T any](values []T) bson.M {
	return bson.M{"$in": values}
}

// SortAscending creates an ascending sort
func SortAscending(field string) bson.D {
	return bson.D{{Key: field, Value: 1}}
}
