// Package mongo connects to MongoDB with the official v2 driver.
//
//	db, err := mongo.ConnectDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer db.Client().Disconnect(context.Background())
//
// The request log stores one document per record in the database named by
// MONGODB_DATABASE.
package mongo
