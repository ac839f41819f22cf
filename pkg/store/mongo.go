package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore はコレクション1つを1ストアとして扱うMongoDB実装です。
// 成果物JSONは payload フィールドに文字列のまま保持し、ファイル実装と
// バイト互換の内容を保つのだ。
type MongoStore struct {
	coll *mongo.Collection
}

type mongoDoc struct {
	ID      string `bson:"_id"`
	Payload string `bson:"payload"`
}

// NewMongoStore は指定コレクションを包むストアを返します。
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// NewMongoSet はMongoDBへ接続し、成果物ごとのストア一式と切断関数を返します。
func NewMongoSet(ctx context.Context, uri, dbName string) (*Set, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("MongoDBへの接続に失敗したのだ: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("MongoDBの疎通確認に失敗したのだ: %w", err)
	}
	slog.Info("MongoDBに接続しました", "database", dbName)

	db := client.Database(dbName)
	set := &Set{
		Projects: NewMongoStore(db.Collection("projects")),
		Index:    NewMongoStore(db.Collection("index")),
		Pages:    NewMongoStore(db.Collection("pages")),
		Bibles:   NewMongoStore(db.Collection("bibles")),
		Prompts:  NewMongoStore(db.Collection("prompts")),
	}
	return set, client.Disconnect, nil
}

// Get はキーのドキュメントを読み出して v へデコードします。
func (s *MongoStore) Get(ctx context.Context, key string, v any) error {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return fmt.Errorf("ストアの読み込みに失敗したのだ: %w", err)
	}
	if err := json.Unmarshal([]byte(doc.Payload), v); err != nil {
		return fmt.Errorf("ストア内容のデコードに失敗したのだ (key=%s): %w", key, err)
	}
	return nil
}

// Put は v をJSON化して upsert します。後勝ちで上書きします。
func (s *MongoStore) Put(ctx context.Context, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("ストア内容のエンコードに失敗したのだ (key=%s): %w", key, err)
	}
	doc := mongoDoc{ID: key, Payload: string(data)}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("ストアの書き込みに失敗したのだ: %w", err)
	}
	return nil
}

// Delete はキーのドキュメントを削除します。存在しない場合も成功扱いなのだ。
func (s *MongoStore) Delete(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("ストアの削除に失敗したのだ: %w", err)
	}
	return nil
}

// List は保存済みキーをソート順で返します。
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	cursor, err := s.coll.Find(ctx, bson.D{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("ストア一覧の取得に失敗したのだ: %w", err)
	}
	defer cursor.Close(ctx)

	var keys []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("ストア一覧のデコードに失敗したのだ: %w", err)
		}
		keys = append(keys, doc.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("ストア一覧の走査に失敗したのだ: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}
